package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jltdev15/crime-analytics/internal/config"
	"github.com/jltdev15/crime-analytics/internal/controllers"
	"github.com/jltdev15/crime-analytics/internal/database"
	"github.com/jltdev15/crime-analytics/internal/models"
	"github.com/jltdev15/crime-analytics/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Crime{},
		&models.Barangay{},
		&models.Prediction{},
		&models.Recommendation{},
		&models.ImportHistory{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	crimeSvc := services.NewCrimeService(db)
	barangaySvc := services.NewBarangayService(db)
	analyticsSvc := services.NewAnalyticsService(db)
	predictiveSvc := services.NewPredictiveService(db)
	importSvc := services.NewDataImportService(db, predictiveSvc)

	// Train from whatever history is already present. Not fatal: the
	// statistical fallback serves forecasts until enough data arrives.
	if err := predictiveSvc.Initialize(context.Background()); err != nil {
		log.Printf("model initialization skipped: %v", err)
	}

	crimeCtrl := controllers.NewCrimeController(crimeSvc)
	barangayCtrl := controllers.NewBarangayController(barangaySvc)
	analyticsCtrl := controllers.NewAnalyticsController(analyticsSvc)
	predictiveCtrl := controllers.NewPredictiveController(predictiveSvc, db)
	dataCtrl := controllers.NewDataController(importSvc)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	crimeCtrl.Register(api)
	barangayCtrl.Register(api)
	analyticsCtrl.Register(api)
	predictiveCtrl.Register(api)
	dataCtrl.Register(api)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Logger.Fatal(e.Start(cfg.ServerAddr))
}

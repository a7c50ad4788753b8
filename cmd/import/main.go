// Command import loads a crime or population spreadsheet into the
// database from the command line, bypassing the HTTP upload endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/jltdev15/crime-analytics/internal/config"
	"github.com/jltdev15/crime-analytics/internal/database"
	"github.com/jltdev15/crime-analytics/internal/models"
	"github.com/jltdev15/crime-analytics/internal/services"
)

type cli struct {
	File    string `arg:"" type:"existingfile" help:"XLSX or CSV file to import."`
	Retrain bool   `default:"true" negatable:"" help:"Retrain the model and regenerate predictions after importing."`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("import"),
		kong.Description("Import crime or population data from a spreadsheet."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env", ".env.local"),
	)

	cfg, err := config.Load()
	if err != nil {
		kctx.FatalIfErrorf(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}

	if err := db.AutoMigrate(
		&models.Crime{},
		&models.Barangay{},
		&models.Prediction{},
		&models.Recommendation{},
		&models.ImportHistory{},
	); err != nil {
		kctx.FatalIfErrorf(err)
	}

	f, err := os.Open(args.File)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close file: %v", err)
		}
	}()

	predictiveSvc := services.NewPredictiveService(db)
	importSvc := services.NewDataImportService(db, predictiveSvc)

	result, err := importSvc.ImportFile(context.Background(), filepath.Base(args.File), f, args.Retrain)
	kctx.FatalIfErrorf(err)

	fmt.Printf("Import %s finished (%s)\n", result.ImportID, result.Type)
	fmt.Printf("  total rows: %d\n", result.TotalRows)
	fmt.Printf("  imported:   %d\n", result.Imported)
	fmt.Printf("  invalid:    %d\n", result.Invalid)
	fmt.Printf("  duplicates: %d\n", result.Duplicates)
	fmt.Printf("  retrained:  %v\n", result.Retrained)
}

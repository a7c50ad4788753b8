package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jltdev15/crime-analytics/internal/services"
)

// DataController handles spreadsheet uploads and dataset housekeeping.
type DataController struct {
	svc services.DataImportService
}

// NewDataController creates a new instance of DataController.
func NewDataController(svc services.DataImportService) *DataController {
	return &DataController{svc: svc}
}

// Register registers the routes for the data controller.
func (ctrl *DataController) Register(g *echo.Group) {
	g.POST("/data/import", ctrl.Upload)
	g.GET("/data/import/history", ctrl.GetImportHistory)
	g.GET("/data/health", ctrl.GetSystemHealth)
	g.GET("/data/statistics", ctrl.GetDataStatistics)
	g.POST("/data/backup", ctrl.CreateBackup)
}

// Upload handles POST /data/import. The multipart field is named
// "file"; pass retrain=false to skip the post-import model refresh.
func (ctrl *DataController) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing multipart file field 'file'"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to open uploaded file"})
	}
	defer file.Close()

	retrain := c.QueryParam("retrain") != "false"
	result, err := ctrl.svc.ImportFile(c.Request().Context(), fileHeader.Filename, file, retrain)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetImportHistory handles GET /data/import/history.
func (ctrl *DataController) GetImportHistory(c echo.Context) error {
	history, err := ctrl.svc.ListImportHistory(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load import history"})
	}
	return c.JSON(http.StatusOK, history)
}

// GetSystemHealth handles GET /data/health.
func (ctrl *DataController) GetSystemHealth(c echo.Context) error {
	health, err := ctrl.svc.GetSystemHealth(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute system health"})
	}
	return c.JSON(http.StatusOK, health)
}

// GetDataStatistics handles GET /data/statistics.
func (ctrl *DataController) GetDataStatistics(c echo.Context) error {
	stats, err := ctrl.svc.GetDataStatistics(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute statistics"})
	}
	return c.JSON(http.StatusOK, stats)
}

// CreateBackup handles POST /data/backup.
func (ctrl *DataController) CreateBackup(c echo.Context) error {
	dir := c.QueryParam("dir")
	if dir == "" {
		dir = "backups"
	}
	backup, err := ctrl.svc.CreateBackup(c.Request().Context(), dir)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create backup"})
	}
	return c.JSON(http.StatusOK, backup)
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/models"
	"github.com/jltdev15/crime-analytics/internal/services"
)

// PredictiveController exposes the forecasting core: on-demand
// forecasts and risk assessments, batch regeneration, and read access
// to stored predictions and recommendations.
type PredictiveController struct {
	svc services.PredictiveService
	db  *gorm.DB
}

// NewPredictiveController creates a new instance of PredictiveController.
func NewPredictiveController(svc services.PredictiveService, db *gorm.DB) *PredictiveController {
	return &PredictiveController{svc: svc, db: db}
}

// Register registers the routes for the predictive controller.
func (ctrl *PredictiveController) Register(g *echo.Group) {
	g.POST("/predictive/initialize", ctrl.Initialize)
	g.GET("/predictive/incidents", ctrl.GetForecast)
	g.GET("/predictive/risk", ctrl.GetRiskAssessment)
	g.POST("/predictive/generate/predictions", ctrl.GeneratePredictions)
	g.POST("/predictive/generate/recommendations", ctrl.GenerateRecommendations)
	g.GET("/predictive/model/performance", ctrl.GetModelPerformance)
	g.GET("/predictions", ctrl.ListPredictions)
	g.GET("/predictions/:id", ctrl.GetPrediction)
	g.GET("/recommendations", ctrl.ListRecommendations)
	g.PUT("/recommendations/:id/status", ctrl.UpdateRecommendationStatus)
}

// Initialize handles POST /predictive/initialize: retrains the model
// from the full incident history.
func (ctrl *PredictiveController) Initialize(c echo.Context) error {
	if err := ctrl.svc.Initialize(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to initialize model"})
	}
	return c.JSON(http.StatusOK, ctrl.svc.ModelInfo())
}

// bindKey extracts the (area, crime type) key from query parameters.
func bindKey(c echo.Context) (models.CrimeKey, bool) {
	key := models.CrimeKey{
		Barangay:     c.QueryParam("barangay"),
		Municipality: c.QueryParam("municipality"),
		Province:     c.QueryParam("province"),
		Country:      c.QueryParam("country"),
		CrimeType:    c.QueryParam("crimeType"),
	}
	ok := key.Barangay != "" && key.Municipality != "" && key.Province != "" && key.CrimeType != ""
	return key, ok
}

// GetForecast handles GET /predictive/incidents.
func (ctrl *PredictiveController) GetForecast(c echo.Context) error {
	key, ok := bindKey(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing required parameters: barangay, municipality, province, crimeType",
		})
	}
	horizon, _ := strconv.Atoi(c.QueryParam("months"))

	forecast, err := ctrl.svc.GenerateForecast(c.Request().Context(), key, horizon)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate forecast"})
	}
	return c.JSON(http.StatusOK, map[string]any{"key": key, "forecast": forecast})
}

// GetRiskAssessment handles GET /predictive/risk.
func (ctrl *PredictiveController) GetRiskAssessment(c echo.Context) error {
	key, ok := bindKey(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Missing required parameters: barangay, municipality, province, crimeType",
		})
	}

	assessment, err := ctrl.svc.AssessRisk(c.Request().Context(), key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to assess risk"})
	}
	return c.JSON(http.StatusOK, map[string]any{"key": key, "assessment": assessment})
}

// GeneratePredictions handles POST /predictive/generate/predictions.
func (ctrl *PredictiveController) GeneratePredictions(c echo.Context) error {
	summary, err := ctrl.svc.GenerateAllPredictions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to regenerate predictions"})
	}
	return c.JSON(http.StatusOK, summary)
}

// GenerateRecommendations handles POST /predictive/generate/recommendations.
func (ctrl *PredictiveController) GenerateRecommendations(c echo.Context) error {
	total, err := ctrl.svc.GenerateRecommendations(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to regenerate recommendations"})
	}
	return c.JSON(http.StatusOK, map[string]int{"generated": total})
}

// GetModelPerformance handles GET /predictive/model/performance.
func (ctrl *PredictiveController) GetModelPerformance(c echo.Context) error {
	return c.JSON(http.StatusOK, ctrl.svc.ModelInfo())
}

// ListPredictions handles GET /predictions with optional riskLevel and
// area filters.
func (ctrl *PredictiveController) ListPredictions(c echo.Context) error {
	query := ctrl.db.WithContext(c.Request().Context()).Model(&models.Prediction{})
	if level := c.QueryParam("riskLevel"); level != "" {
		query = query.Where("risk_level = ?", level)
	}
	if barangay := c.QueryParam("barangay"); barangay != "" {
		query = query.Where("barangay = ?", barangay)
	}
	if municipality := c.QueryParam("municipality"); municipality != "" {
		query = query.Where("municipality = ?", municipality)
	}

	var predictions []models.Prediction
	if err := query.Order("probability DESC").Find(&predictions).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list predictions"})
	}
	return c.JSON(http.StatusOK, predictions)
}

// GetPrediction handles GET /predictions/:id.
func (ctrl *PredictiveController) GetPrediction(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid prediction id"})
	}

	var prediction models.Prediction
	err = ctrl.db.WithContext(c.Request().Context()).First(&prediction, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "prediction not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load prediction"})
	}
	return c.JSON(http.StatusOK, prediction)
}

// ListRecommendations handles GET /recommendations with optional
// filters.
func (ctrl *PredictiveController) ListRecommendations(c echo.Context) error {
	query := ctrl.db.WithContext(c.Request().Context()).Model(&models.Recommendation{})
	if priority := c.QueryParam("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if barangay := c.QueryParam("barangay"); barangay != "" {
		query = query.Where("barangay = ?", barangay)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var recommendations []models.Recommendation
	if err := query.Order("priority DESC, confidence DESC").Find(&recommendations).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list recommendations"})
	}
	return c.JSON(http.StatusOK, recommendations)
}

// UpdateRecommendationStatus handles PUT /recommendations/:id/status.
func (ctrl *PredictiveController) UpdateRecommendationStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid recommendation id"})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	switch body.Status {
	case "pending", "in_progress", "completed", "dismissed":
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
	}

	result := ctrl.db.WithContext(c.Request().Context()).
		Model(&models.Recommendation{}).
		Where("recommendation_id = ?", uint(id)).
		Update("status", body.Status)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update status"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "recommendation not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": body.Status})
}

package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jltdev15/crime-analytics/internal/services"
)

// AnalyticsController exposes the descriptive statistics endpoints.
type AnalyticsController struct {
	svc services.AnalyticsService
}

// NewAnalyticsController creates a new instance of AnalyticsController.
func NewAnalyticsController(svc services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{svc: svc}
}

// Register registers the routes for the analytics controller.
func (ctrl *AnalyticsController) Register(g *echo.Group) {
	g.GET("/analytics/summary", ctrl.GetSummaryStats)
	g.GET("/analytics/top-barangays", ctrl.GetTopBarangays)
	g.GET("/analytics/top-barangays-by-rate", ctrl.GetTopBarangaysByRate)
	g.GET("/analytics/crime-distribution", ctrl.GetCrimeDistribution)
	g.GET("/analytics/crime-types", ctrl.GetCrimeTypeDistribution)
	g.GET("/analytics/barangay-counts", ctrl.GetBarangayCounts)
	g.GET("/analytics/low-crime-barangays", ctrl.GetLowCrimeRateBarangays)
}

// GetSummaryStats handles GET /analytics/summary.
func (ctrl *AnalyticsController) GetSummaryStats(c echo.Context) error {
	stats, err := ctrl.svc.GetSummaryStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute summary"})
	}
	return c.JSON(http.StatusOK, stats)
}

// GetTopBarangays handles GET /analytics/top-barangays?limit=.
func (ctrl *AnalyticsController) GetTopBarangays(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	top, err := ctrl.svc.GetTopBarangaysByCrimeCount(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute top barangays"})
	}
	return c.JSON(http.StatusOK, top)
}

// GetTopBarangaysByRate handles GET /analytics/top-barangays-by-rate?limit=.
func (ctrl *AnalyticsController) GetTopBarangaysByRate(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	top, err := ctrl.svc.GetTopBarangaysByCrimeRate(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute top barangays by rate"})
	}
	return c.JSON(http.StatusOK, top)
}

// GetCrimeDistribution handles GET /analytics/crime-distribution.
func (ctrl *AnalyticsController) GetCrimeDistribution(c echo.Context) error {
	dist, err := ctrl.svc.GetCrimeDistribution(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute distribution"})
	}
	return c.JSON(http.StatusOK, dist)
}

// GetCrimeTypeDistribution handles GET /analytics/crime-types with
// optional area filters.
func (ctrl *AnalyticsController) GetCrimeTypeDistribution(c echo.Context) error {
	dist, err := ctrl.svc.GetCrimeTypeDistribution(c.Request().Context(),
		c.QueryParam("barangay"), c.QueryParam("municipality"), c.QueryParam("province"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute type distribution"})
	}
	return c.JSON(http.StatusOK, dist)
}

// GetBarangayCounts handles GET /analytics/barangay-counts.
func (ctrl *AnalyticsController) GetBarangayCounts(c echo.Context) error {
	counts, err := ctrl.svc.GetBarangayCounts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to count barangays"})
	}
	return c.JSON(http.StatusOK, counts)
}

// GetLowCrimeRateBarangays handles GET /analytics/low-crime-barangays?threshold=.
func (ctrl *AnalyticsController) GetLowCrimeRateBarangays(c echo.Context) error {
	threshold, _ := strconv.ParseFloat(c.QueryParam("threshold"), 64)
	low, err := ctrl.svc.GetLowCrimeRateBarangays(c.Request().Context(), threshold)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute low-crime barangays"})
	}
	return c.JSON(http.StatusOK, low)
}

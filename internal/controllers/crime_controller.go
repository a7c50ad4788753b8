package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/models"
	"github.com/jltdev15/crime-analytics/internal/services"
)

// CrimeController handles HTTP requests for incident records.
type CrimeController struct {
	svc services.CrimeService
}

// NewCrimeController creates a new instance of CrimeController.
func NewCrimeController(svc services.CrimeService) *CrimeController {
	return &CrimeController{svc: svc}
}

// Register registers the routes for the crime controller.
func (ctrl *CrimeController) Register(g *echo.Group) {
	g.GET("/crimes", ctrl.ListCrimes)
	g.GET("/crimes/:id", ctrl.GetCrime)
	g.POST("/crimes", ctrl.CreateCrime)
	g.DELETE("/crimes/:id", ctrl.DeleteCrime)
}

// ListCrimes handles GET /crimes with optional filters and pagination.
func (ctrl *CrimeController) ListCrimes(c echo.Context) error {
	filter := services.CrimeFilter{
		Barangay:     c.QueryParam("barangay"),
		Municipality: c.QueryParam("municipality"),
		Province:     c.QueryParam("province"),
		CrimeType:    c.QueryParam("crimeType"),
		Status:       c.QueryParam("status"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if start := c.QueryParam("startDate"); start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid startDate, expected YYYY-MM-DD"})
		}
		filter.StartDate = parsed
	}
	if end := c.QueryParam("endDate"); end != "" {
		parsed, err := time.Parse("2006-01-02", end)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid endDate, expected YYYY-MM-DD"})
		}
		filter.EndDate = parsed
	}

	page, err := ctrl.svc.ListCrimes(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list crimes"})
	}
	return c.JSON(http.StatusOK, page)
}

// GetCrime handles GET /crimes/:id.
func (ctrl *CrimeController) GetCrime(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid crime id"})
	}

	crime, err := ctrl.svc.GetCrime(c.Request().Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "crime not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load crime"})
	}
	return c.JSON(http.StatusOK, crime)
}

// CreateCrime handles POST /crimes.
func (ctrl *CrimeController) CreateCrime(c echo.Context) error {
	var req models.CrimeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	crime, err := ctrl.svc.CreateCrime(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, crime)
}

// DeleteCrime handles DELETE /crimes/:id.
func (ctrl *CrimeController) DeleteCrime(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid crime id"})
	}

	err = ctrl.svc.DeleteCrime(c.Request().Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "crime not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete crime"})
	}
	return c.NoContent(http.StatusNoContent)
}

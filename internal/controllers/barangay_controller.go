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

// BarangayController handles HTTP requests for barangay reference data.
type BarangayController struct {
	svc services.BarangayService
}

// NewBarangayController creates a new instance of BarangayController.
func NewBarangayController(svc services.BarangayService) *BarangayController {
	return &BarangayController{svc: svc}
}

// Register registers the routes for the barangay controller.
func (ctrl *BarangayController) Register(g *echo.Group) {
	g.GET("/barangays", ctrl.ListBarangays)
	g.GET("/barangays/search", ctrl.SearchBarangays)
	g.POST("/barangays", ctrl.CreateBarangay)
	g.DELETE("/barangays/:id", ctrl.DeleteBarangay)
}

// ListBarangays handles GET /barangays with optional area filters.
func (ctrl *BarangayController) ListBarangays(c echo.Context) error {
	barangays, err := ctrl.svc.ListBarangays(c.Request().Context(),
		c.QueryParam("municipality"), c.QueryParam("province"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list barangays"})
	}
	return c.JSON(http.StatusOK, barangays)
}

// SearchBarangays handles GET /barangays/search?q=.
func (ctrl *BarangayController) SearchBarangays(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
	}

	barangays, err := ctrl.svc.SearchBarangays(c.Request().Context(), query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to search barangays"})
	}
	return c.JSON(http.StatusOK, barangays)
}

// CreateBarangay handles POST /barangays.
func (ctrl *BarangayController) CreateBarangay(c echo.Context) error {
	var barangay models.Barangay
	if err := c.Bind(&barangay); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := ctrl.svc.CreateBarangay(c.Request().Context(), &barangay); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, barangay)
}

// DeleteBarangay handles DELETE /barangays/:id.
func (ctrl *BarangayController) DeleteBarangay(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid barangay id"})
	}

	err = ctrl.svc.DeleteBarangay(c.Request().Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "barangay not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete barangay"})
	}
	return c.NoContent(http.StatusNoContent)
}

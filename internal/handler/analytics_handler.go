package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/service"
)

// AnalyticsHandler serves the back-office dashboard aggregates
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Overview handles GET /api/v1/analytics/overview
func (h *AnalyticsHandler) Overview(c echo.Context) error {
	dashboard, err := h.analyticsService.Overview(c.Request().Context())
	if err != nil {
		return respondDomainError(c, err, "load dashboard")
	}
	return c.JSON(http.StatusOK, dashboard)
}

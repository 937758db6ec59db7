package handlers

import (
	"townhall-docflow/internal/adapters/http/middleware"
	"townhall-docflow/internal/core/services"
	"townhall-docflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles workload statistics endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetStats handles the dashboard snapshot
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.dashboardService.Stats(c.Context(), p)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", stats)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/services"
)

// DashboardHandler serves the capacity planning dashboard.
type DashboardHandler struct {
	dashboardService services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetDashboard handles GET /dashboard?range=day|week|month.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context(), c.Query("range"))
	if err != nil {
		respondServiceError(c, err, "Failed to load dashboard.")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

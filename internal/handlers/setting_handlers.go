package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/services"
)

// SettingsHandler handles global settings and per-date overrides.
type SettingsHandler struct {
	settingsService services.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(ss services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

// GetSettings handles GET /settings. It reads through to the store so the
// form always shows what is saved.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Reload(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load settings.")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	settings, err := h.settingsService.SaveDefaults(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to save settings.")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpsertDailyConfig handles PUT /settings/daily/:date.
func (h *SettingsHandler) UpsertDailyConfig(c *gin.Context) {
	var req services.DailyConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	config, err := h.settingsService.SaveDailyConfig(c.Request.Context(), c.Param("date"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to save daily config.")
		return
	}
	c.JSON(http.StatusOK, config)
}

// ApplyBatchSchedule handles POST /settings/daily/batch.
func (h *SettingsHandler) ApplyBatchSchedule(c *gin.Context) {
	var req services.BatchScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.settingsService.ApplyBatch(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to apply batch schedule.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDailyConfigs handles GET /settings/daily?from=&to=.
func (h *SettingsHandler) GetDailyConfigs(c *gin.Context) {
	configs, err := h.settingsService.ListDailyConfigs(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err, "Failed to load daily configs.")
		return
	}
	c.JSON(http.StatusOK, configs)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/services"
	"facility_dashboard_backend/pkg/utils"
)

// CalendarHandler serves the event calendar and its sidebar statistics.
type CalendarHandler struct {
	calendarService services.CalendarService
	statsService    services.StatsService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(cs services.CalendarService, ss services.StatsService) *CalendarHandler {
	return &CalendarHandler{calendarService: cs, statsService: ss}
}

// GetMonth handles GET /calendar?year=&month=&departments=. Without year and
// month the current month is returned.
func (h *CalendarHandler) GetMonth(c *gin.Context) {
	var year, month int
	if c.Query("year") != "" || c.Query("month") != "" {
		var err error
		if year, err = strconv.Atoi(c.Query("year")); err != nil {
			utils.RespondValidationFailed(c, "year must be a number")
			return
		}
		if month, err = strconv.Atoi(c.Query("month")); err != nil {
			utils.RespondValidationFailed(c, "month must be a number")
			return
		}
	}

	calendar, err := h.calendarService.Month(c.Request.Context(), year, month, utils.SplitList(c.Query("departments")))
	if err != nil {
		respondServiceError(c, err, "Failed to load calendar.")
		return
	}
	c.JSON(http.StatusOK, calendar)
}

// GetStats handles GET /stats.
func (h *CalendarHandler) GetStats(c *gin.Context) {
	summary, err := h.statsService.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load statistics.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

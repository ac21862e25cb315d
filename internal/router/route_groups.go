package router

import (
	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/handlers"
	"facility_dashboard_backend/internal/middleware"
	"facility_dashboard_backend/internal/services"
)

// SetupAuthRoutes sets up the public authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(apiGroup *gin.RouterGroup, dashboardHandler *handlers.DashboardHandler) {
	apiGroup.GET("/dashboard", dashboardHandler.GetDashboard)
}

// SetupEntryRoutes sets up the entry and import routes.
func SetupEntryRoutes(apiGroup *gin.RouterGroup, entryHandler *handlers.EntryHandler) {
	entryRoutes := apiGroup.Group("/entries")
	{
		entryRoutes.POST("", entryHandler.SubmitEntry)
		entryRoutes.POST("/import", entryHandler.ImportEntries)
		entryRoutes.GET("/import/template", entryHandler.DownloadImportTemplate)
		entryRoutes.GET("/:date", entryHandler.GetDayEntry)
	}
}

// SetupCalendarRoutes sets up the calendar and statistics routes.
func SetupCalendarRoutes(apiGroup *gin.RouterGroup, calendarHandler *handlers.CalendarHandler) {
	apiGroup.GET("/calendar", calendarHandler.GetMonth)
	apiGroup.GET("/stats", calendarHandler.GetStats)
}

// SetupSettingsRoutes sets up the settings routes. Admin only.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingsHandler *handlers.SettingsHandler) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	settingsRoutes.Use(middleware.RoleAuthMiddleware(services.RoleAdmin))
	{
		settingsRoutes.GET("", settingsHandler.GetSettings)
		settingsRoutes.PUT("", settingsHandler.UpdateSettings)
		settingsRoutes.GET("/daily", settingsHandler.GetDailyConfigs)
		settingsRoutes.PUT("/daily/:date", settingsHandler.UpsertDailyConfig)
		settingsRoutes.POST("/daily/batch", settingsHandler.ApplyBatchSchedule)
	}
}

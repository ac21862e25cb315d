package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/handlers"
	"facility_dashboard_backend/internal/middleware"
	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/services"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/pkg/utils"
)

// Options carries what the routes need besides the store.
type Options struct {
	JWTManager     *utils.JWTManager
	PassphraseHash []byte
	Location       *time.Location
	Clock          services.Clock // nil means time.Now
}

// Setup initializes the routing for the application. The settings snapshot
// is loaded once here; when the store is unreachable the fallback settings
// are used until the next reload.
func Setup(ctx context.Context, engine *gin.Engine, backend store.Backend, opts Options) {
	// Initialize Repositories
	visitRepo := repositories.NewVisitRepository(backend)
	mealRepo := repositories.NewMealRepository(backend)
	eventRepo := repositories.NewEventRepository(backend)
	settingRepo := repositories.NewSettingRepository(backend)
	dailyConfigRepo := repositories.NewDailyConfigRepository(backend)

	// Initialize Services
	settingsService := services.NewSettingsService(settingRepo, dailyConfigRepo)
	if _, err := settingsService.Reload(ctx); err != nil {
		utils.LogWarn("Using fallback settings, initial load failed", map[string]interface{}{"error": err.Error()})
	}
	dashboardService := services.NewDashboardService(visitRepo, mealRepo, dailyConfigRepo, settingsService, opts.Clock, opts.Location)
	entryService := services.NewEntryService(eventRepo, mealRepo, visitRepo, dailyConfigRepo, settingsService)
	importService := services.NewImportService(eventRepo, mealRepo, visitRepo)
	calendarService := services.NewCalendarService(eventRepo, opts.Clock, opts.Location)
	statsService := services.NewStatsService(eventRepo, mealRepo, opts.Clock, opts.Location)
	authService := services.NewAuthService(opts.PassphraseHash, opts.JWTManager)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	entryHandler := handlers.NewEntryHandler(entryService, importService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	calendarHandler := handlers.NewCalendarHandler(calendarService, statsService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupDashboardRoutes(apiV1, dashboardHandler)
	SetupEntryRoutes(apiV1, entryHandler)
	SetupCalendarRoutes(apiV1, calendarHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(opts.JWTManager))
	{
		SetupSettingsRoutes(authenticated, settingsHandler)
	}
}

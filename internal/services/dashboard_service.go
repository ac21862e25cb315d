package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/pkg/utils"
)

// Dashboard ranges.
const (
	RangeDay   = "day"
	RangeWeek  = "week"
	RangeMonth = "month"
)

type rangeSpec struct {
	lookback    int
	granularity planning.Granularity
}

var dashboardRanges = map[string]rangeSpec{
	RangeDay:   {lookback: 7, granularity: planning.Daily},
	RangeWeek:  {lookback: 28, granularity: planning.Weekly},
	RangeMonth: {lookback: 31, granularity: planning.Daily},
}

// --- DashboardService Interface ---
type DashboardService interface {
	// Get builds the dashboard for a range name; empty means day.
	Get(ctx context.Context, rangeName string) (*models.Dashboard, error)
}

type dashboardService struct {
	visitRepo       repositories.VisitRepository
	mealRepo        repositories.MealRepository
	dailyConfigRepo repositories.DailyConfigRepository
	settings        SettingsService
	clock           Clock
	loc             *time.Location
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	visitRepo repositories.VisitRepository,
	mealRepo repositories.MealRepository,
	dailyConfigRepo repositories.DailyConfigRepository,
	settings SettingsService,
	clock Clock,
	loc *time.Location,
) DashboardService {
	return &dashboardService{
		visitRepo:       visitRepo,
		mealRepo:        mealRepo,
		dailyConfigRepo: dailyConfigRepo,
		settings:        settings,
		clock:           clock,
		loc:             loc,
	}
}

func (s *dashboardService) Get(ctx context.Context, rangeName string) (*models.Dashboard, error) {
	if rangeName == "" {
		rangeName = RangeDay
	}
	spec, ok := dashboardRanges[rangeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q, expected day, week or month", ErrInvalidRange, rangeName)
	}

	today := s.clock.today(s.loc)
	dates, err := planning.LookbackDates(today, spec.lookback)
	if err != nil {
		return nil, err
	}

	// All four reads form one batch: the first failure cancels the rest and
	// no partial dashboard is returned.
	var (
		visits   []models.VisitRecord
		meals    []models.MealRecord
		configs  []models.DailyConfig
		settings models.GlobalSettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visits, err = s.visitRepo.ListRecent(gctx, today, spec.lookback)
		return err
	})
	g.Go(func() error {
		var err error
		meals, err = s.mealRepo.ListRecent(gctx, today, spec.lookback)
		return err
	})
	g.Go(func() error {
		var err error
		configs, err = s.dailyConfigRepo.ListByDates(gctx, dates)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Reload(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.LogError(err, "Failed to load dashboard", map[string]interface{}{"range": rangeName})
		return nil, err
	}

	details, err := planning.BuildDetails(today, spec.lookback, visits, meals, configs, settings)
	if err != nil {
		return nil, err
	}
	visitsSeries, err := planning.Aggregate(planning.VisitCounts(visits), spec.granularity)
	if err != nil {
		return nil, err
	}
	mealsSeries, err := planning.Aggregate(planning.MealCounts(meals), spec.granularity)
	if err != nil {
		return nil, err
	}

	utils.LogDebug("Dashboard built", map[string]interface{}{
		"range":  rangeName,
		"today":  today,
		"visits": len(visits),
		"meals":  len(meals),
	})
	return &models.Dashboard{
		Range:        rangeName,
		Granularity:  string(spec.granularity),
		Summary:      details[0],
		VisitsSeries: planning.Label(visitsSeries, spec.granularity),
		MealsSeries:  planning.Label(mealsSeries, spec.granularity),
		Details:      details,
	}, nil
}

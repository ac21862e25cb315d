package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
)

const (
	upcomingWindowDays = 7
	upcomingLimit      = 3
)

// --- StatsService Interface ---
type StatsService interface {
	Summary(ctx context.Context) (*models.StatsSummary, error)
}

type statsService struct {
	eventRepo repositories.EventRepository
	mealRepo  repositories.MealRepository
	clock     Clock
	loc       *time.Location
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(eventRepo repositories.EventRepository, mealRepo repositories.MealRepository, clock Clock, loc *time.Location) StatsService {
	return &statsService{eventRepo: eventRepo, mealRepo: mealRepo, clock: clock, loc: loc}
}

// Summary returns the event total, the meal total and the next events of
// the coming week.
func (s *statsService) Summary(ctx context.Context) (*models.StatsSummary, error) {
	today := s.clock.today(s.loc)
	until, err := planning.AddDays(today, upcomingWindowDays)
	if err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.eventRepo.Count(gctx)
		summary.TotalEvents = n
		return err
	})
	g.Go(func() error {
		n, err := s.mealRepo.SumCounts(gctx)
		summary.TotalMeals = n
		return err
	})
	g.Go(func() error {
		events, err := s.eventRepo.ListRange(gctx, today, until, nil, upcomingLimit)
		summary.Upcoming = events
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/pkg/utils"
)

// --- Data Transfer Objects (DTOs) ---

// EntryRequest DTO. Every part is optional except the date; a part is
// written only when present.
type EntryRequest struct {
	Date            string `json:"date" binding:"required"`
	EventTitle      string `json:"event_title"`
	Department      string `json:"department"`
	Description     string `json:"description"`
	MealCount       *int   `json:"meal_count"`
	IsMealAvailable *bool  `json:"is_meal_available"`
	VisitCount      *int   `json:"visit_count"`
}

const MessageNothingToSave = "nothing to save"

// --- EntryService Interface ---
type EntryService interface {
	Submit(ctx context.Context, req EntryRequest) (*models.EntryResult, error)
	GetDay(ctx context.Context, date string) (*models.DayEntry, error)
}

type entryService struct {
	eventRepo       repositories.EventRepository
	mealRepo        repositories.MealRepository
	visitRepo       repositories.VisitRepository
	dailyConfigRepo repositories.DailyConfigRepository
	settings        SettingsService
	newID           func() string
}

// NewEntryService creates a new instance of EntryService.
func NewEntryService(
	eventRepo repositories.EventRepository,
	mealRepo repositories.MealRepository,
	visitRepo repositories.VisitRepository,
	dailyConfigRepo repositories.DailyConfigRepository,
	settings SettingsService,
) EntryService {
	return &entryService{
		eventRepo:       eventRepo,
		mealRepo:        mealRepo,
		visitRepo:       visitRepo,
		dailyConfigRepo: dailyConfigRepo,
		settings:        settings,
		newID:           uuid.NewString,
	}
}

// Submit validates the entry and issues the event insert, meal upsert and
// visit upsert concurrently. When a write fails the others still complete
// and every failure is reported in one *WriteError.
func (s *entryService) Submit(ctx context.Context, req EntryRequest) (*models.EntryResult, error) {
	date, err := planning.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	department, err := parseDepartment(req.Department)
	if err != nil {
		return nil, err
	}
	if req.MealCount != nil {
		if err := utils.ValidateCount("meal_count", *req.MealCount); err != nil {
			return nil, err
		}
	}
	if req.VisitCount != nil {
		if err := utils.ValidateCount("visit_count", *req.VisitCount); err != nil {
			return nil, err
		}
	}

	var writes []write
	if title := strings.TrimSpace(req.EventTitle); title != "" {
		event := models.Event{
			ID:          s.newID(),
			Title:       title,
			Date:        date,
			Department:  department,
			Description: utils.NewNullString(req.Description),
		}
		writes = append(writes, write{table: store.TableEvents, run: func(ctx context.Context) error {
			return s.eventRepo.Insert(ctx, []models.Event{event})
		}})
	}
	if req.MealCount != nil {
		meal := models.MealRecord{Date: date, Count: *req.MealCount, IsAvailable: true}
		if req.IsMealAvailable != nil {
			meal.IsAvailable = *req.IsMealAvailable
		}
		writes = append(writes, write{table: store.TableMeals, run: func(ctx context.Context) error {
			return s.mealRepo.Upsert(ctx, []models.MealRecord{meal})
		}})
	}
	if req.VisitCount != nil {
		visit := models.VisitRecord{Date: date, Count: *req.VisitCount}
		writes = append(writes, write{table: store.TableVisits, run: func(ctx context.Context) error {
			return s.visitRepo.Upsert(ctx, []models.VisitRecord{visit})
		}})
	}

	if len(writes) == 0 {
		return &models.EntryResult{Saved: false, Message: MessageNothingToSave}, nil
	}

	written, err := runWrites(ctx, writes)
	if err != nil {
		utils.LogError(err, "Entry partially failed", map[string]interface{}{"date": date, "written": written})
		return nil, err
	}
	utils.LogInfo("Entry saved", map[string]interface{}{"date": date, "written": written})
	return &models.EntryResult{
		Saved:   true,
		Message: fmt.Sprintf("saved %s for %s", strings.Join(written, ", "), date),
		Written: written,
	}, nil
}

// GetDay returns everything recorded for one date together with its
// resolved capacity.
func (s *entryService) GetDay(ctx context.Context, date string) (*models.DayEntry, error) {
	date, err := planning.NormalizeDate(date)
	if err != nil {
		return nil, err
	}

	entry := &models.DayEntry{Date: date}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		visit, err := s.visitRepo.GetByDate(gctx, date)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		entry.Visit = visit
		return nil
	})
	g.Go(func() error {
		meal, err := s.mealRepo.GetByDate(gctx, date)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		entry.Meal = meal
		return nil
	})
	g.Go(func() error {
		events, err := s.eventRepo.ListByDate(gctx, date)
		if err != nil {
			return err
		}
		entry.Events = events
		return nil
	})
	g.Go(func() error {
		override, err := s.dailyConfigRepo.GetByDate(gctx, date)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		entry.Override = override
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var visits, eventMeals int
	if entry.Visit != nil {
		visits = entry.Visit.Count
	}
	if entry.Meal != nil {
		eventMeals = entry.Meal.Count
	}
	capacity := planning.Resolve(date, s.settings.Current(), entry.Override)
	entry.Detail = planning.Detail(date, visits, eventMeals, capacity)
	return entry, nil
}

// parseDepartment accepts a department code or its display name. Blank
// means the default department.
func parseDepartment(value string) (models.Department, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.DefaultDepartment, nil
	}
	if models.IsValidDepartment(strings.ToLower(value)) {
		return models.Department(strings.ToLower(value)), nil
	}
	for department, name := range models.DepartmentNames {
		if name == value {
			return department, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDepartment, value)
}

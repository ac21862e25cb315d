package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/pkg/utils"
)

// --- Data Transfer Objects (DTOs) ---

// UpdateSettingsRequest DTO
type UpdateSettingsRequest struct {
	DefaultCapacity  *int  `json:"default_capacity" binding:"required"`
	DefaultMealCount *int  `json:"default_meal_count" binding:"required"`
	OperatingDays    []int `json:"operating_days"`
}

// DailyConfigRequest DTO
type DailyConfigRequest struct {
	Capacity  *int `json:"capacity" binding:"required"`
	MealCount *int `json:"meal_count" binding:"required"`
}

// BatchScheduleRequest DTO. Weekdays use Sunday = 0.
type BatchScheduleRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Weekdays  []int  `json:"weekdays"`
	Capacity  *int   `json:"capacity" binding:"required"`
	MealCount *int   `json:"meal_count" binding:"required"`
}

// BatchScheduleResult DTO
type BatchScheduleResult struct {
	Updated int      `json:"updated"`
	Dates   []string `json:"dates"`
	Message string   `json:"message"`
}

const MessageNoDatesMatched = "no dates matched"

// MaxBatchDays bounds the date range of one batch schedule, about ten years.
const MaxBatchDays = 3660

// --- SettingsService Interface ---
type SettingsService interface {
	// Current returns the last loaded settings snapshot.
	Current() models.GlobalSettings
	Reload(ctx context.Context) (models.GlobalSettings, error)
	SaveDefaults(ctx context.Context, req UpdateSettingsRequest) (models.GlobalSettings, error)
	SaveDailyConfig(ctx context.Context, date string, req DailyConfigRequest) (*models.DailyConfig, error)
	ApplyBatch(ctx context.Context, req BatchScheduleRequest) (*BatchScheduleResult, error)
	ListDailyConfigs(ctx context.Context, from, to string) ([]models.DailyConfig, error)
}

type settingsService struct {
	settingRepo     repositories.SettingRepository
	dailyConfigRepo repositories.DailyConfigRepository

	mu       sync.RWMutex
	snapshot models.GlobalSettings
}

// NewSettingsService creates the service with the fallback snapshot. Call
// Reload to read the stored settings.
func NewSettingsService(settingRepo repositories.SettingRepository, dailyConfigRepo repositories.DailyConfigRepository) SettingsService {
	return &settingsService{
		settingRepo:     settingRepo,
		dailyConfigRepo: dailyConfigRepo,
		snapshot:        planning.FallbackSettings(),
	}
}

func (s *settingsService) Current() models.GlobalSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.snapshot)
}

func (s *settingsService) Reload(ctx context.Context) (models.GlobalSettings, error) {
	raw, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return models.GlobalSettings{}, err
	}
	settings := planning.ParseGlobalSettings(raw)

	s.mu.Lock()
	s.snapshot = settings
	s.mu.Unlock()
	return cloneSettings(settings), nil
}

func (s *settingsService) SaveDefaults(ctx context.Context, req UpdateSettingsRequest) (models.GlobalSettings, error) {
	if req.DefaultCapacity == nil || req.DefaultMealCount == nil {
		return models.GlobalSettings{}, fmt.Errorf("%w: default_capacity and default_meal_count are required", ErrInvalidCount)
	}
	if err := utils.ValidateCount("default_capacity", *req.DefaultCapacity); err != nil {
		return models.GlobalSettings{}, err
	}
	if err := utils.ValidateCount("default_meal_count", *req.DefaultMealCount); err != nil {
		return models.GlobalSettings{}, err
	}
	days, err := planning.NewWeekdaySet(req.OperatingDays...)
	if err != nil {
		return models.GlobalSettings{}, err
	}

	err = s.settingRepo.Upsert(ctx, []models.ApplicationSetting{
		{Key: models.SettingDefaultCapacity, Value: strconv.Itoa(*req.DefaultCapacity)},
		{Key: models.SettingDefaultMealCount, Value: strconv.Itoa(*req.DefaultMealCount)},
		{Key: models.SettingOperatingDays, Value: days.String()},
	})
	if err != nil {
		utils.LogError(err, "Failed to save settings")
		return models.GlobalSettings{}, err
	}
	utils.LogInfo("Settings saved", map[string]interface{}{
		"default_capacity":   *req.DefaultCapacity,
		"default_meal_count": *req.DefaultMealCount,
		"operating_days":     days.String(),
	})
	return s.Reload(ctx)
}

func (s *settingsService) SaveDailyConfig(ctx context.Context, date string, req DailyConfigRequest) (*models.DailyConfig, error) {
	normalized, err := planning.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	if req.Capacity == nil || req.MealCount == nil {
		return nil, fmt.Errorf("%w: capacity and meal_count are required", ErrInvalidCount)
	}
	if err := utils.ValidateCount("capacity", *req.Capacity); err != nil {
		return nil, err
	}
	if err := utils.ValidateCount("meal_count", *req.MealCount); err != nil {
		return nil, err
	}

	config := models.DailyConfig{Date: normalized, Capacity: *req.Capacity, MealCount: *req.MealCount}
	if err := s.dailyConfigRepo.Upsert(ctx, []models.DailyConfig{config}); err != nil {
		utils.LogError(err, "Failed to save daily config", map[string]interface{}{"date": normalized})
		return nil, err
	}
	return &config, nil
}

// ApplyBatch materializes the weekday rule over the date range and upserts
// the rows in one call. Re-applying the same rule is idempotent.
func (s *settingsService) ApplyBatch(ctx context.Context, req BatchScheduleRequest) (*BatchScheduleResult, error) {
	if req.Capacity == nil || req.MealCount == nil {
		return nil, fmt.Errorf("%w: capacity and meal_count are required", ErrInvalidCount)
	}
	if err := utils.ValidateCount("capacity", *req.Capacity); err != nil {
		return nil, err
	}
	if err := utils.ValidateCount("meal_count", *req.MealCount); err != nil {
		return nil, err
	}
	weekdays, err := planning.NewWeekdaySet(req.Weekdays...)
	if err != nil {
		return nil, err
	}
	span, err := planning.DaysBetween(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if span >= MaxBatchDays {
		return nil, fmt.Errorf("%w: %s to %s spans more than %d days", ErrInvalidRange, req.StartDate, req.EndDate, MaxBatchDays)
	}

	configs, err := planning.Materialize(req.StartDate, req.EndDate, weekdays, *req.Capacity, *req.MealCount)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return &BatchScheduleResult{Updated: 0, Dates: []string{}, Message: MessageNoDatesMatched}, nil
	}

	if err := s.dailyConfigRepo.Upsert(ctx, configs); err != nil {
		utils.LogError(err, "Failed to apply batch schedule", map[string]interface{}{"rows": len(configs)})
		return nil, err
	}

	dates := make([]string, len(configs))
	for i, c := range configs {
		dates[i] = c.Date
	}
	utils.LogInfo("Batch schedule applied", map[string]interface{}{
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"weekdays":   weekdays.String(),
		"rows":       len(configs),
	})
	return &BatchScheduleResult{
		Updated: len(configs),
		Dates:   dates,
		Message: fmt.Sprintf("%d dates updated", len(configs)),
	}, nil
}

func (s *settingsService) ListDailyConfigs(ctx context.Context, from, to string) ([]models.DailyConfig, error) {
	from, err := planning.NormalizeDate(from)
	if err != nil {
		return nil, err
	}
	to, err = planning.NormalizeDate(to)
	if err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, from, to)
	}
	return s.dailyConfigRepo.ListRange(ctx, from, to)
}

func cloneSettings(settings models.GlobalSettings) models.GlobalSettings {
	settings.OperatingDays = slices.Clone(settings.OperatingDays)
	if settings.OperatingDays == nil {
		settings.OperatingDays = []int{}
	}
	return settings
}

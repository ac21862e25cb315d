package repositories

import (
	"context"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// DailyConfigRepository defines the store operations on per-date overrides.
type DailyConfigRepository interface {
	ListByDates(ctx context.Context, dates []string) ([]models.DailyConfig, error)
	ListRange(ctx context.Context, from, to string) ([]models.DailyConfig, error)
	GetByDate(ctx context.Context, date string) (*models.DailyConfig, error)
	Upsert(ctx context.Context, configs []models.DailyConfig) error
}

type dailyConfigRepository struct {
	table store.Table
}

// NewDailyConfigRepository creates a new instance of DailyConfigRepository.
func NewDailyConfigRepository(backend store.Backend) DailyConfigRepository {
	return &dailyConfigRepository{table: backend.Table(store.TableDailyConfigs)}
}

func (r *dailyConfigRepository) ListByDates(ctx context.Context, dates []string) ([]models.DailyConfig, error) {
	if len(dates) == 0 {
		return []models.DailyConfig{}, nil
	}
	rows, err := r.table.Select(ctx, store.Query{Filters: []store.Filter{store.In("date", dates)}})
	if err != nil {
		return nil, dbError("listing daily configs", err)
	}
	return scanDailyConfigs(rows)
}

func (r *dailyConfigRepository) ListRange(ctx context.Context, from, to string) ([]models.DailyConfig, error) {
	rows, err := r.table.Select(ctx, store.Query{
		Filters: []store.Filter{store.Gte("date", from), store.Lte("date", to)},
		OrderBy: "date",
	})
	if err != nil {
		return nil, dbError("listing daily configs", err)
	}
	return scanDailyConfigs(rows)
}

func (r *dailyConfigRepository) GetByDate(ctx context.Context, date string) (*models.DailyConfig, error) {
	rows, err := r.table.Select(ctx, store.Query{Filters: []store.Filter{store.Eq("date", date)}, Limit: 1})
	if err != nil {
		return nil, dbError("getting daily config", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	configs, err := scanDailyConfigs(rows)
	if err != nil {
		return nil, err
	}
	return &configs[0], nil
}

// Upsert writes overrides keyed on date; the last write for a date wins.
func (r *dailyConfigRepository) Upsert(ctx context.Context, configs []models.DailyConfig) error {
	rows := make([]store.Row, len(configs))
	for i, c := range configs {
		rows[i] = store.Row{"date": c.Date, "capacity": c.Capacity, "meal_count": c.MealCount}
	}
	if err := r.table.Upsert(ctx, rows, "date"); err != nil {
		return dbError("upserting daily configs", err)
	}
	return nil
}

func scanDailyConfigs(rows []store.Row) ([]models.DailyConfig, error) {
	configs := make([]models.DailyConfig, 0, len(rows))
	for _, row := range rows {
		date, err := rowDate(row, "date")
		if err != nil {
			return nil, err
		}
		capacity, err := rowInt(row, "capacity")
		if err != nil {
			return nil, err
		}
		mealCount, err := rowInt(row, "meal_count")
		if err != nil {
			return nil, err
		}
		configs = append(configs, models.DailyConfig{Date: date, Capacity: capacity, MealCount: mealCount})
	}
	return configs, nil
}

package repositories

import (
	"context"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// MealRepository defines the store operations on event meal demand.
type MealRepository interface {
	ListRecent(ctx context.Context, until string, limit int) ([]models.MealRecord, error) // newest first, date <= until
	GetByDate(ctx context.Context, date string) (*models.MealRecord, error)
	Upsert(ctx context.Context, meals []models.MealRecord) error
	SumCounts(ctx context.Context) (int, error)
}

type mealRepository struct {
	table store.Table
}

// NewMealRepository creates a new instance of MealRepository.
func NewMealRepository(backend store.Backend) MealRepository {
	return &mealRepository{table: backend.Table(store.TableMeals)}
}

func (r *mealRepository) ListRecent(ctx context.Context, until string, limit int) ([]models.MealRecord, error) {
	rows, err := r.table.Select(ctx, store.Query{
		Filters:    []store.Filter{store.Lte("date", until)},
		OrderBy:    "date",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, dbError("listing recent meals", err)
	}
	return scanMeals(rows)
}

func (r *mealRepository) GetByDate(ctx context.Context, date string) (*models.MealRecord, error) {
	rows, err := r.table.Select(ctx, store.Query{Filters: []store.Filter{store.Eq("date", date)}, Limit: 1})
	if err != nil {
		return nil, dbError("getting meal", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	meals, err := scanMeals(rows)
	if err != nil {
		return nil, err
	}
	return &meals[0], nil
}

func (r *mealRepository) Upsert(ctx context.Context, meals []models.MealRecord) error {
	rows := make([]store.Row, len(meals))
	for i, m := range meals {
		rows[i] = store.Row{"date": m.Date, "count": m.Count, "is_available": m.IsAvailable}
	}
	if err := r.table.Upsert(ctx, rows, "date"); err != nil {
		return dbError("upserting meals", err)
	}
	return nil
}

// SumCounts adds up the count column of every meal row.
func (r *mealRepository) SumCounts(ctx context.Context) (int, error) {
	rows, err := r.table.Select(ctx, store.Query{Columns: []string{"count"}})
	if err != nil {
		return 0, dbError("summing meals", err)
	}
	total := 0
	for _, row := range rows {
		n, err := rowInt(row, "count")
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func scanMeals(rows []store.Row) ([]models.MealRecord, error) {
	meals := make([]models.MealRecord, 0, len(rows))
	for _, row := range rows {
		date, err := rowDate(row, "date")
		if err != nil {
			return nil, err
		}
		count, err := rowInt(row, "count")
		if err != nil {
			return nil, err
		}
		meals = append(meals, models.MealRecord{Date: date, Count: count, IsAvailable: rowBool(row, "is_available")})
	}
	return meals, nil
}

package repositories

import (
	"context"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// VisitRepository defines the store operations on daily visitor counts.
type VisitRepository interface {
	ListRecent(ctx context.Context, until string, limit int) ([]models.VisitRecord, error) // newest first, date <= until
	GetByDate(ctx context.Context, date string) (*models.VisitRecord, error)
	Upsert(ctx context.Context, visits []models.VisitRecord) error
}

type visitRepository struct {
	table store.Table
}

// NewVisitRepository creates a new instance of VisitRepository.
func NewVisitRepository(backend store.Backend) VisitRepository {
	return &visitRepository{table: backend.Table(store.TableVisits)}
}

func (r *visitRepository) ListRecent(ctx context.Context, until string, limit int) ([]models.VisitRecord, error) {
	rows, err := r.table.Select(ctx, store.Query{
		Filters:    []store.Filter{store.Lte("date", until)},
		OrderBy:    "date",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, dbError("listing recent visits", err)
	}
	return scanVisits(rows)
}

func (r *visitRepository) GetByDate(ctx context.Context, date string) (*models.VisitRecord, error) {
	rows, err := r.table.Select(ctx, store.Query{Filters: []store.Filter{store.Eq("date", date)}, Limit: 1})
	if err != nil {
		return nil, dbError("getting visit", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	visits, err := scanVisits(rows)
	if err != nil {
		return nil, err
	}
	return &visits[0], nil
}

// Upsert writes one row per date, replacing existing counts.
func (r *visitRepository) Upsert(ctx context.Context, visits []models.VisitRecord) error {
	rows := make([]store.Row, len(visits))
	for i, v := range visits {
		rows[i] = store.Row{"date": v.Date, "count": v.Count}
	}
	if err := r.table.Upsert(ctx, rows, "date"); err != nil {
		return dbError("upserting visits", err)
	}
	return nil
}

func scanVisits(rows []store.Row) ([]models.VisitRecord, error) {
	visits := make([]models.VisitRecord, 0, len(rows))
	for _, row := range rows {
		date, err := rowDate(row, "date")
		if err != nil {
			return nil, err
		}
		count, err := rowInt(row, "count")
		if err != nil {
			return nil, err
		}
		visits = append(visits, models.VisitRecord{Date: date, Count: count})
	}
	return visits, nil
}

package repositories

import (
	"context"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// EventRepository defines the store operations on events. Events are only
// ever inserted.
type EventRepository interface {
	// ListRange returns events with from <= date <= to in ascending date
	// order. An empty departments slice means all; limit 0 means no limit.
	ListRange(ctx context.Context, from, to string, departments []models.Department, limit int) ([]models.Event, error)
	ListByDate(ctx context.Context, date string) ([]models.Event, error)
	Insert(ctx context.Context, events []models.Event) error
	Count(ctx context.Context) (int, error)
}

type eventRepository struct {
	table store.Table
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(backend store.Backend) EventRepository {
	return &eventRepository{table: backend.Table(store.TableEvents)}
}

func (r *eventRepository) ListRange(ctx context.Context, from, to string, departments []models.Department, limit int) ([]models.Event, error) {
	filters := []store.Filter{store.Gte("date", from), store.Lte("date", to)}
	if len(departments) > 0 {
		values := make([]string, len(departments))
		for i, d := range departments {
			values[i] = string(d)
		}
		filters = append(filters, store.In("type", values))
	}
	rows, err := r.table.Select(ctx, store.Query{Filters: filters, OrderBy: "date", Limit: limit})
	if err != nil {
		return nil, dbError("listing events", err)
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListByDate(ctx context.Context, date string) ([]models.Event, error) {
	rows, err := r.table.Select(ctx, store.Query{Filters: []store.Filter{store.Eq("date", date)}})
	if err != nil {
		return nil, dbError("listing events by date", err)
	}
	return scanEvents(rows)
}

// Insert writes events in one batch. The department is stored in the type
// column.
func (r *eventRepository) Insert(ctx context.Context, events []models.Event) error {
	rows := make([]store.Row, len(events))
	for i, e := range events {
		rows[i] = store.Row{
			"id":          e.ID,
			"title":       e.Title,
			"date":        e.Date,
			"type":        string(e.Department),
			"description": e.Description,
		}
	}
	if err := r.table.Insert(ctx, rows); err != nil {
		return dbError("inserting events", err)
	}
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int, error) {
	n, err := r.table.Count(ctx, store.Query{})
	if err != nil {
		return 0, dbError("counting events", err)
	}
	return n, nil
}

func scanEvents(rows []store.Row) ([]models.Event, error) {
	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		id, err := rowString(row, "id")
		if err != nil {
			return nil, err
		}
		title, err := rowString(row, "title")
		if err != nil {
			return nil, err
		}
		date, err := rowDate(row, "date")
		if err != nil {
			return nil, err
		}
		department, err := rowString(row, "type")
		if err != nil {
			return nil, err
		}
		events = append(events, models.Event{
			ID:          id,
			Title:       title,
			Date:        date,
			Department:  models.Department(department),
			Description: rowOptionalString(row, "description"),
		})
	}
	return events, nil
}

package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/internal/store/memory"
	"facility_dashboard_backend/internal/store/postgres"
)

func TestVisitRepository_UpsertAndListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitRepository(memory.NewBackend())

	require.NoError(t, repo.Upsert(ctx, []models.VisitRecord{
		{Date: "2024-06-08", Count: 3},
		{Date: "2024-06-10", Count: 12},
		{Date: "2024-06-09", Count: 7},
	}))
	require.NoError(t, repo.Upsert(ctx, []models.VisitRecord{{Date: "2024-06-10", Count: 15}, {Date: "2024-06-20", Count: 40}}))

	visits, err := repo.ListRecent(ctx, "2024-06-10", 2)
	require.NoError(t, err)
	assert.Equal(t, []models.VisitRecord{{Date: "2024-06-10", Count: 15}, {Date: "2024-06-09", Count: 7}}, visits)

	_, err = repo.GetByDate(ctx, "2024-06-11")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVisitRepository_ScansDriverTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "date", "count" FROM "visits" WHERE "date" = $1 LIMIT $2`)).
		WithArgs("2024-06-10", 1).
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).AddRow(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), int64(12)))

	visit, err := NewVisitRepository(postgres.NewBackend(db)).GetByDate(context.Background(), "2024-06-10")

	require.NoError(t, err)
	assert.Equal(t, &models.VisitRecord{Date: "2024-06-10", Count: 12}, visit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMealRepository_SumCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMealRepository(memory.NewBackend())
	require.NoError(t, repo.Upsert(ctx, []models.MealRecord{
		{Date: "2024-06-10", Count: 20, IsAvailable: true},
		{Date: "2024-06-11", Count: 5, IsAvailable: true},
	}))

	total, err := repo.SumCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	meal, err := repo.GetByDate(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.True(t, meal.IsAvailable)
}

func TestEventRepository_ListRangeFiltersDepartments(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(memory.NewBackend())
	note := "gym"
	require.NoError(t, repo.Insert(ctx, []models.Event{
		{ID: "a", Title: "Robotics", Date: "2024-06-12", Department: models.DepartmentCreative},
		{ID: "b", Title: "Board meeting", Date: "2024-06-03", Department: models.DepartmentPlanning, Description: &note},
		{ID: "c", Title: "Audit", Date: "2024-07-01", Department: models.DepartmentGeneral},
	}))

	events, err := repo.ListRange(ctx, "2024-06-01", "2024-06-30", nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	require.NotNil(t, events[0].Description)
	assert.Equal(t, "gym", *events[0].Description)

	events, err = repo.ListRange(ctx, "2024-06-01", "2024-06-30", []models.Department{models.DepartmentCreative}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.DepartmentCreative, events[0].Department)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSettingRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(memory.NewBackend())
	require.NoError(t, repo.Upsert(ctx, []models.ApplicationSetting{
		{Key: models.SettingDefaultCapacity, Value: "200"},
		{Key: models.SettingOperatingDays, Value: "1,2,3"},
	}))
	require.NoError(t, repo.Upsert(ctx, []models.ApplicationSetting{{Key: models.SettingDefaultCapacity, Value: "210"}}))

	settings, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default_capacity": "210", "operating_days": "1,2,3"}, settings)
}

func TestDailyConfigRepository_ListByDates(t *testing.T) {
	ctx := context.Background()
	repo := NewDailyConfigRepository(memory.NewBackend())
	require.NoError(t, repo.Upsert(ctx, []models.DailyConfig{
		{Date: "2024-06-10", Capacity: 50, MealCount: 45},
		{Date: "2024-06-12", Capacity: 0, MealCount: 0},
	}))

	configs, err := repo.ListByDates(ctx, []string{"2024-06-12", "2024-06-13"})
	require.NoError(t, err)
	assert.Equal(t, []models.DailyConfig{{Date: "2024-06-12"}}, configs)

	configs, err = repo.ListByDates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestRepositories_WrapStoreErrors(t *testing.T) {
	backend := memory.NewBackend()
	backend.FailWith(store.TableVisits, errors.New("relation \"visits\" does not exist"))

	_, err := NewVisitRepository(backend).ListRecent(context.Background(), "2024-06-10", 7)

	assert.ErrorIs(t, err, ErrDatabaseError)
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, `relation "visits" does not exist`, storeErr.Message)
}

func TestRowHelpers(t *testing.T) {
	row := store.Row{"count": float64(4), "bad": 1.5, "text": "7", "date": "2024-06-10T00:00:00+09:00"}

	n, err := rowInt(row, "count")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = rowInt(row, "text")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = rowInt(row, "bad")
	assert.ErrorIs(t, err, ErrInvalidRow)

	date, err := rowDate(row, "date")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", date)
}

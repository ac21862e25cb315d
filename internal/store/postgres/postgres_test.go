package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility_dashboard_backend/internal/store"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Backend) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewBackend(db)
}

func TestSelect_BuildsQueryAndNormalizesDates(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"date", "count"}).
		AddRow(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), int64(12)).
		AddRow(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), int64(4))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "date", "count" FROM "visits" WHERE "date" >= $1 AND "date" <= $2 ORDER BY "date" DESC LIMIT $3`)).
		WithArgs("2024-06-01", "2024-06-10", 7).
		WillReturnRows(rows)

	got, err := backend.Table(store.TableVisits).Select(context.Background(), store.Query{
		Filters:    []store.Filter{store.Gte("date", "2024-06-01"), store.Lte("date", "2024-06-10")},
		OrderBy:    "date",
		Descending: true,
		Limit:      7,
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-06-10", got[0]["date"])
	assert.Equal(t, int64(12), got[0]["count"])
	assert.Equal(t, "2024-06-09", got[1]["date"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_InFilterUsesArray(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "date", "capacity", "meal_count" FROM "daily_configs" WHERE "date"::text = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"date", "capacity", "meal_count"}))

	got, err := backend.Table(store.TableDailyConfigs).Select(context.Background(), store.Query{
		Filters: []store.Filter{store.In("date", []string{"2024-06-10", "2024-06-09"})},
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_RejectsUnknownColumnWithoutQuerying(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	_, err := backend.Table(store.TableVisits).Select(context.Background(), store.Query{OrderBy: "1; DROP TABLE visits"})

	assert.ErrorIs(t, err, store.ErrUnknownColumn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_OnConflictUpdatesNonKeyColumns(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO "visits" ("date", "count") VALUES ($1, $2), ($3, $4) ON CONFLICT ("date") DO UPDATE SET "count" = EXCLUDED."count"`)).
		WithArgs("2024-06-10", 12, "2024-06-11", 3).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := backend.Table(store.TableVisits).Upsert(context.Background(), []store.Row{
		{"date": "2024-06-10", "count": 12},
		{"date": "2024-06-11", "count": 3},
	}, "date")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkRows_StaysUnderParameterLimit(t *testing.T) {
	rows := make([]store.Row, 50000)

	chunks := chunkRows(rows, 5)

	require.Len(t, chunks, 4)
	total := 0
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk)*5, maxParams)
		total += len(chunk)
	}
	assert.Equal(t, len(rows), total)
	assert.Len(t, chunkRows(rows[:3], 5), 1)
}

func TestUpsert_SplitsLargeBatches(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	// 22280 rows of three columns need 66840 parameters, more than one
	// statement may bind.
	rows := make([]store.Row, 22280)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = store.Row{"date": start.AddDate(0, 0, i).Format("2006-01-02"), "capacity": 180, "meal_count": 45}
	}
	upsert := `^INSERT INTO "daily_configs" \("date", "capacity", "meal_count"\) VALUES .* ON CONFLICT \("date"\) DO UPDATE SET`
	mock.ExpectExec(upsert).WillReturnResult(sqlmock.NewResult(0, int64(maxParams/3)))
	mock.ExpectExec(upsert).WillReturnResult(sqlmock.NewResult(0, int64(len(rows)-maxParams/3)))

	err := backend.Table(store.TableDailyConfigs).Upsert(context.Background(), rows, "date")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_WrongConflictKey(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	err := backend.Table(store.TableVisits).Upsert(context.Background(), []store.Row{{"date": "2024-06-10", "count": 1}}, "count")

	assert.ErrorIs(t, err, store.ErrInvalidQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_EmptyBatchIsNoop(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	require.NoError(t, backend.Table(store.TableEvents).Insert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_WrapsDriverError(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "events" ("id", "title", "date", "type") VALUES ($1, $2, $3, $4)`)).
		WillReturnError(&pq.Error{Code: "23514", Message: "new row violates check constraint", Detail: "Failing row contains (x)."})

	err := backend.Table(store.TableEvents).Insert(context.Background(), []store.Row{
		{"id": "e1", "title": "Open day", "date": "2024-06-10", "type": "unknown"},
	})

	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "events", storeErr.Table)
	assert.Equal(t, "insert", storeErr.Op)
	assert.Equal(t, "23514", storeErr.Code)
	assert.Equal(t, "new row violates check constraint (Failing row contains (x).)", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	db, mock, backend := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "events"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := backend.Table(store.TableEvents).Count(context.Background(), store.Query{})

	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility_dashboard_backend/internal/store"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackend(Config{BaseURL: srv.URL + "/rest/v1/", APIKey: "anon-key"})
}

func TestSelect_EncodesFiltersOrderAndLimit(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/meals", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, []string{"gte.2024-06-01", "lte.2024-06-30"}, q["date"])
		assert.Equal(t, "date,count,is_available", q.Get("select"))
		assert.Equal(t, "date.desc", q.Get("order"))
		assert.Equal(t, "5", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"date":"2024-06-10","count":20,"is_available":true}]`)
	})

	rows, err := backend.Table(store.TableMeals).Select(context.Background(), store.Query{
		Filters:    []store.Filter{store.Gte("date", "2024-06-01"), store.Lte("date", "2024-06-30")},
		OrderBy:    "date",
		Descending: true,
		Limit:      5,
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-06-10", rows[0]["date"])
	assert.Equal(t, float64(20), rows[0]["count"])
	assert.Equal(t, true, rows[0]["is_available"])
}

func TestSelect_InFilter(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "in.(2024-06-10,2024-06-09)", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	})

	rows, err := backend.Table(store.TableDailyConfigs).Select(context.Background(), store.Query{
		Filters: []store.Filter{store.In("date", []string{"2024-06-10", "2024-06-09"})},
	})

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpsert_SendsMergeDuplicates(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "date", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "resolution=merge-duplicates,return=minimal", r.Header.Get("Prefer"))

		var body []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 2)
		w.WriteHeader(http.StatusCreated)
	})

	err := backend.Table(store.TableDailyConfigs).Upsert(context.Background(), []store.Row{
		{"date": "2024-06-10", "capacity": 200, "meal_count": 40},
		{"date": "2024-06-12", "capacity": 200, "meal_count": 40},
	}, "date")

	require.NoError(t, err)
}

func TestInsert_ReturnsStoreErrorMessage(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"invalid input value for enum department","details":"value: \"sales\"","code":"22P02"}`)
	})

	err := backend.Table(store.TableEvents).Insert(context.Background(), []store.Row{
		{"id": "e1", "title": "Fair", "date": "2024-06-10", "type": "sales"},
	})

	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "22P02", storeErr.Code)
	assert.Equal(t, `invalid input value for enum department (value: "sales")`, err.Error())
}

func TestCount_ReadsContentRange(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "*/17")
		w.WriteHeader(http.StatusOK)
	})

	count, err := backend.Table(store.TableEvents).Count(context.Background(), store.Query{})

	require.NoError(t, err)
	assert.Equal(t, 17, count)
}

func TestCount_ErrorWithoutBody(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := backend.Table(store.TableEvents).Count(context.Background(), store.Query{})

	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, storeErr.Message, "401")
}

func TestParseContentRange(t *testing.T) {
	n, err := parseContentRange("0-24/3573")
	require.NoError(t, err)
	assert.Equal(t, 3573, n)

	_, err = parseContentRange("0-24")
	assert.Error(t, err)
}

// Package memory implements the table store in process memory. It backs
// local development (STORE_BACKEND=memory) and service tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"facility_dashboard_backend/internal/store"
)

// Backend keeps every table in memory, guarded by one mutex.
type Backend struct {
	mu     sync.RWMutex
	tables map[string][]store.Row
	// failures injects an error per table, for tests.
	failures map[string]error
}

// NewBackend returns an empty store.
func NewBackend() *Backend {
	return &Backend{
		tables:   make(map[string][]store.Row),
		failures: make(map[string]error),
	}
}

func (b *Backend) Table(name string) store.Table {
	return &table{backend: b, name: name}
}

func (b *Backend) Close() error {
	return nil
}

// FailWith makes every operation on table return err. A nil err clears it.
func (b *Backend) FailWith(table string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, table)
		return
	}
	b.failures[table] = err
}

// Rows returns a copy of a table's rows in insertion order.
func (b *Backend) Rows(table string) []store.Row {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rows := make([]store.Row, len(b.tables[table]))
	for i, r := range b.tables[table] {
		rows[i] = maps.Clone(r)
	}
	return rows
}

type table struct {
	backend *Backend
	name    string
}

func (t *table) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	columns, err := store.ValidateQuery(t.name, q)
	if err != nil {
		return nil, err
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if err := t.failure("select"); err != nil {
		return nil, err
	}

	matched := []store.Row{}
	for _, row := range t.backend.tables[t.name] {
		if matches(row, q.Filters) {
			matched = append(matched, row)
		}
	}
	if q.OrderBy != "" {
		slices.SortStableFunc(matched, func(a, b store.Row) int {
			c := compare(a[q.OrderBy], b[q.OrderBy])
			if q.Descending {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	result := make([]store.Row, len(matched))
	for i, row := range matched {
		out := make(store.Row, len(columns))
		for _, c := range columns {
			if v, ok := row[c]; ok {
				out[c] = v
			}
		}
		result[i] = out
	}
	return result, nil
}

func (t *table) Insert(ctx context.Context, rows []store.Row) error {
	if _, err := store.ValidateRows(t.name, rows); err != nil {
		return err
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if err := t.failure("insert"); err != nil {
		return err
	}
	for _, row := range rows {
		t.backend.tables[t.name] = append(t.backend.tables[t.name], maps.Clone(row))
	}
	return nil
}

func (t *table) Upsert(ctx context.Context, rows []store.Row, conflictKey string) error {
	if err := store.ValidateConflictKey(t.name, conflictKey); err != nil {
		return err
	}
	if _, err := store.ValidateRows(t.name, rows); err != nil {
		return err
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if err := t.failure("upsert"); err != nil {
		return err
	}

	existing := t.backend.tables[t.name]
	for _, row := range rows {
		key, ok := row[conflictKey]
		if !ok {
			return &store.Error{Table: t.name, Op: "upsert", Message: fmt.Sprintf("row is missing conflict key %q", conflictKey)}
		}
		replaced := false
		for i, old := range existing {
			if compare(old[conflictKey], key) == 0 {
				merged := maps.Clone(old)
				maps.Copy(merged, row)
				existing[i] = merged
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, maps.Clone(row))
		}
	}
	t.backend.tables[t.name] = existing
	return nil
}

func (t *table) Count(ctx context.Context, q store.Query) (int, error) {
	if _, err := store.ValidateQuery(t.name, store.Query{Filters: q.Filters}); err != nil {
		return 0, err
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if err := t.failure("count"); err != nil {
		return 0, err
	}
	count := 0
	for _, row := range t.backend.tables[t.name] {
		if matches(row, q.Filters) {
			count++
		}
	}
	return count, nil
}

// failure must be called with the lock held.
func (t *table) failure(op string) error {
	if err, ok := t.backend.failures[t.name]; ok {
		return &store.Error{Table: t.name, Op: op, Message: err.Error()}
	}
	return nil
}

func matches(row store.Row, filters []store.Filter) bool {
	for _, f := range filters {
		v := row[f.Column]
		switch f.Op {
		case store.OpEq:
			if compare(v, f.Value) != 0 {
				return false
			}
		case store.OpGte:
			if compare(v, f.Value) < 0 {
				return false
			}
		case store.OpLte:
			if compare(v, f.Value) > 0 {
				return false
			}
		case store.OpIn:
			values, _ := f.Value.([]string)
			if !slices.Contains(values, fmt.Sprint(v)) {
				return false
			}
		}
	}
	return true
}

// compare orders numbers numerically and everything else by its string form.
// Dates are stored as YYYY-MM-DD strings, so string order is date order.
func compare(a, b any) int {
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

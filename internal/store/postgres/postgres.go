// Package postgres implements the table store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"facility_dashboard_backend/internal/store"
)

// SQLExecutor is the part of *sql.DB the tables use.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Backend serves tables from a PostgreSQL database.
type Backend struct {
	db *sql.DB
}

// NewBackend wraps an open database.
func NewBackend(db *sql.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Table(name string) store.Table {
	return &table{executor: b.db, name: name}
}

func (b *Backend) Close() error {
	return b.db.Close()
}

type table struct {
	executor SQLExecutor
	name     string
}

func (t *table) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	columns, err := store.ValidateQuery(t.name, q)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(quoteAll(columns))
	sb.WriteString(" FROM ")
	sb.WriteString(pq.QuoteIdentifier(t.name))
	args := writeWhere(&sb, q.Filters, nil)
	if q.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(pq.QuoteIdentifier(q.OrderBy))
		if q.Descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := t.executor.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, t.wrap("select", err)
	}
	defer rows.Close()

	result := []store.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, t.wrap("select", err)
		}
		row := make(store.Row, len(columns))
		for i, c := range columns {
			row[c] = normalize(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("select", err)
	}
	return result, nil
}

func (t *table) Insert(ctx context.Context, rows []store.Row) error {
	columns, err := store.ValidateRows(t.name, rows)
	if err != nil || len(rows) == 0 {
		return err
	}
	for _, chunk := range chunkRows(rows, len(columns)) {
		query, args := t.insertStatement(columns, chunk)
		if _, err := t.executor.ExecContext(ctx, query, args...); err != nil {
			return t.wrap("insert", err)
		}
	}
	return nil
}

// Upsert writes rows in statements of at most maxParams arguments. Chunks
// already written stay written when a later one fails.
func (t *table) Upsert(ctx context.Context, rows []store.Row, conflictKey string) error {
	if err := store.ValidateConflictKey(t.name, conflictKey); err != nil {
		return err
	}
	columns, err := store.ValidateRows(t.name, rows)
	if err != nil || len(rows) == 0 {
		return err
	}

	var updates []string
	for _, c := range columns {
		if c == conflictKey {
			continue
		}
		q := pq.QuoteIdentifier(c)
		updates = append(updates, q+" = EXCLUDED."+q)
	}
	suffix := " ON CONFLICT (" + pq.QuoteIdentifier(conflictKey) + ")"
	if len(updates) == 0 {
		suffix += " DO NOTHING"
	} else {
		suffix += " DO UPDATE SET " + strings.Join(updates, ", ")
	}

	for _, chunk := range chunkRows(rows, len(columns)) {
		query, args := t.insertStatement(columns, chunk)
		if _, err := t.executor.ExecContext(ctx, query+suffix, args...); err != nil {
			return t.wrap("upsert", err)
		}
	}
	return nil
}

func (t *table) Count(ctx context.Context, q store.Query) (int, error) {
	if _, err := store.ValidateQuery(t.name, store.Query{Filters: q.Filters}); err != nil {
		return 0, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(pq.QuoteIdentifier(t.name))
	args := writeWhere(&sb, q.Filters, nil)

	var count int
	if err := t.executor.QueryRowContext(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, t.wrap("count", err)
	}
	return count, nil
}

// maxParams is the PostgreSQL limit of bind parameters in one statement.
const maxParams = 65535

// chunkRows splits rows so that no statement binds more than maxParams
// arguments.
func chunkRows(rows []store.Row, columns int) [][]store.Row {
	size := maxParams / max(columns, 1)
	chunks := make([][]store.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		chunks = append(chunks, rows[start:min(start+size, len(rows))])
	}
	return chunks
}

// insertStatement builds a multi-row INSERT for validated columns.
func (t *table) insertStatement(columns []string, rows []store.Row) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pq.QuoteIdentifier(t.name))
	sb.WriteString(" (")
	sb.WriteString(quoteAll(columns))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, c := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, row[c])
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteString(")")
	}
	return sb.String(), args
}

func writeWhere(sb *strings.Builder, filters []store.Filter, args []any) []any {
	for i, f := range filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		column := pq.QuoteIdentifier(f.Column)
		switch f.Op {
		case store.OpIn:
			args = append(args, pq.Array(f.Value))
			fmt.Fprintf(sb, "%s::text = ANY($%d)", column, len(args))
		case store.OpGte:
			args = append(args, f.Value)
			fmt.Fprintf(sb, "%s >= $%d", column, len(args))
		case store.OpLte:
			args = append(args, f.Value)
			fmt.Fprintf(sb, "%s <= $%d", column, len(args))
		default:
			args = append(args, f.Value)
			fmt.Fprintf(sb, "%s = $%d", column, len(args))
		}
	}
	return args
}

func quoteAll(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// normalize turns driver values into the plain types repositories expect.
// DATE columns come back as time.Time and are returned as YYYY-MM-DD.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return val
	}
}

func (t *table) wrap(op string, err error) error {
	storeErr := &store.Error{Table: t.name, Op: op, Message: err.Error()}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		storeErr.Message = pqErr.Message
		storeErr.Details = pqErr.Detail
		storeErr.Code = string(pqErr.Code)
	}
	return storeErr
}

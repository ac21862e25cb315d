// Package store is the contract of the external table store: select, insert,
// upsert and count over a small set of named tables.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Table names.
const (
	TableEvents       = "events"
	TableMeals        = "meals"
	TableVisits       = "visits"
	TableSettings     = "settings"
	TableDailyConfigs = "daily_configs"
)

// Op is a filter operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpIn  Op = "in" // Value must be a []string
)

// Filter restricts a query on one column.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }
func In(column string, values []string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// Query describes a select or count. Zero Limit means no limit, empty
// Columns means every column of the table.
type Query struct {
	Columns    []string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Row is one table row keyed by column name.
type Row map[string]any

// Table is one named collection of the store.
type Table interface {
	Select(ctx context.Context, q Query) ([]Row, error)
	Insert(ctx context.Context, rows []Row) error
	Upsert(ctx context.Context, rows []Row, conflictKey string) error
	Count(ctx context.Context, q Query) (int, error)
}

// Backend hands out tables.
type Backend interface {
	Table(name string) Table
	Close() error
}

// Schema lists the columns of a table and the keys it may be upserted on.
type Schema struct {
	Columns      []string
	ConflictKeys []string
}

// Schemas is the column whitelist shared by all backends.
var Schemas = map[string]Schema{
	TableEvents: {
		Columns: []string{"id", "title", "date", "type", "description"},
	},
	TableMeals: {
		Columns:      []string{"date", "count", "is_available"},
		ConflictKeys: []string{"date"},
	},
	TableVisits: {
		Columns:      []string{"date", "count"},
		ConflictKeys: []string{"date"},
	},
	TableSettings: {
		Columns:      []string{"key", "value"},
		ConflictKeys: []string{"key"},
	},
	TableDailyConfigs: {
		Columns:      []string{"date", "capacity", "meal_count"},
		ConflictKeys: []string{"date"},
	},
}

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidQuery  = errors.New("invalid query")
)

// Error is a failure reported by the store. Message and Details are the
// store's own text and are shown to users as is.
type Error struct {
	Table   string
	Op      string
	Message string
	Details string
	Code    string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

func (s Schema) columnsFor(q Query) []string {
	if len(q.Columns) == 0 {
		return s.Columns
	}
	return q.Columns
}

func (s Schema) has(column string) bool {
	return slices.Contains(s.Columns, column)
}

// ValidateQuery checks table and column names and returns the columns to read.
func ValidateQuery(table string, q Query) ([]string, error) {
	schema, ok := Schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	columns := schema.columnsFor(q)
	for _, c := range columns {
		if !schema.has(c) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, c)
		}
	}
	for _, f := range q.Filters {
		if !schema.has(f.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, f.Column)
		}
		switch f.Op {
		case OpEq, OpGte, OpLte:
		case OpIn:
			if _, ok := f.Value.([]string); !ok {
				return nil, fmt.Errorf("%w: in filter on %s needs []string", ErrInvalidQuery, f.Column)
			}
		default:
			return nil, fmt.Errorf("%w: operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.OrderBy != "" && !schema.has(q.OrderBy) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, q.OrderBy)
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return columns, nil
}

// ValidateRows checks that all rows use the same known columns and returns
// them in schema order.
func ValidateRows(table string, rows []Row) ([]string, error) {
	schema, ok := Schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for column := range rows[0] {
		if !schema.has(column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
		}
	}
	columns := make([]string, 0, len(rows[0]))
	for _, c := range schema.Columns {
		if _, ok := rows[0][c]; ok {
			columns = append(columns, c)
		}
	}
	for i, row := range rows[1:] {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has different columns", ErrInvalidQuery, i+1)
		}
		for _, c := range columns {
			if _, ok := row[c]; !ok {
				return nil, fmt.Errorf("%w: row %d is missing %s", ErrInvalidQuery, i+1, c)
			}
		}
	}
	return columns, nil
}

// ValidateConflictKey checks that a table may be upserted on key.
func ValidateConflictKey(table, key string) error {
	schema, ok := Schemas[table]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if !slices.Contains(schema.ConflictKeys, key) {
		return fmt.Errorf("%w: %s cannot be upserted on %q", ErrInvalidQuery, table, key)
	}
	return nil
}

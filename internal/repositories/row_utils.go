package repositories

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"facility_dashboard_backend/internal/store"
)

// Store backends hand back loosely typed values: the SQL driver returns
// int64 and time.Time, PostgREST returns float64 and strings. These helpers
// accept both.

func rowString(row store.Row, column string) (string, error) {
	switch v := row[column].(type) {
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", nil
		}
		return *v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}

func rowOptionalString(row store.Row, column string) *string {
	switch v := row[column].(type) {
	case string:
		return &v
	case *string:
		return v
	case []byte:
		s := string(v)
		return &s
	default:
		return nil
	}
}

func rowInt(row store.Row, column string) (int, error) {
	switch v := row[column].(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s is not an integer: %v", ErrInvalidRow, column, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not an integer: %q", ErrInvalidRow, column, v)
		}
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s has unexpected type %T", ErrInvalidRow, column, v)
	}
}

func rowBool(row store.Row, column string) bool {
	switch v := row[column].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// rowDate returns a DATE column as YYYY-MM-DD. Timestamps keep their first
// ten characters.
func rowDate(row store.Row, column string) (string, error) {
	switch v := row[column].(type) {
	case time.Time:
		return v.Format("2006-01-02"), nil
	case string:
		if len(v) < 10 {
			return "", fmt.Errorf("%w: %s is not a date: %q", ErrInvalidRow, column, v)
		}
		return v[:10], nil
	case []byte:
		if len(v) < 10 {
			return "", fmt.Errorf("%w: %s is not a date: %q", ErrInvalidRow, column, v)
		}
		return string(v[:10]), nil
	default:
		return "", fmt.Errorf("%w: %s has unexpected type %T", ErrInvalidRow, column, v)
	}
}

func dbError(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabaseError, action, err)
}

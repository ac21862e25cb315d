package repositories

import (
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for store failures. It wraps the
	// *store.Error so the store's own message stays reachable.
	ErrDatabaseError = errors.New("database error")

	// ErrInvalidRow is returned when a stored row cannot be mapped to a model.
	ErrInvalidRow = errors.New("invalid stored row")
)

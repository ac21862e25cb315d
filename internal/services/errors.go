package services

import (
	"errors"
	"strings"

	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/pkg/utils"
)

// --- Custom Service Errors ---
var (
	ErrInvalidDate       = planning.ErrInvalidDate
	ErrInvalidWeekday    = planning.ErrInvalidWeekday
	ErrInvalidCount      = utils.ErrInvalidCount
	ErrInvalidDepartment = errors.New("invalid department, expected planning, creative, information or general")
	ErrInvalidRange      = errors.New("invalid range")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrInvalidWorkbook   = errors.New("invalid workbook")
)

// WriteError reports a batch of concurrent writes of which at least one
// failed. Writes that succeeded are not rolled back.
type WriteError struct {
	Written []string // tables written successfully
	Errs    []error
}

// Error joins the store messages of every failure with " | ".
func (e *WriteError) Error() string {
	messages := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		messages[i] = StoreMessage(err)
	}
	return strings.Join(messages, " | ")
}

func (e *WriteError) Unwrap() []error {
	return e.Errs
}

// StoreMessage returns the store's own "message (details)" text when err
// carries a *store.Error, and err.Error() otherwise.
func StoreMessage(err error) string {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr.Error()
	}
	return err.Error()
}

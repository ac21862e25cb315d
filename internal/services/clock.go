package services

import (
	"time"

	"facility_dashboard_backend/internal/planning"
)

// Clock returns the current time. Services take one so tests can pin today.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) today(loc *time.Location) string {
	return planning.Today(c.now(), loc)
}

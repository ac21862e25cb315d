package planning

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date key format.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidWeekday = errors.New("invalid weekday, expected 0 (Sunday) to 6 (Saturday)")
)

// ParseDate parses a date key into UTC midnight. Date arithmetic is done in
// UTC so that daylight saving shifts never move a date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// NormalizeDate validates a date key and returns it in canonical form.
func NormalizeDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatDate returns the calendar date of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the date key of now in loc. A nil loc means now's location.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return FormatDate(now)
}

// AddDays shifts a date key by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// DaysBetween returns the number of days from one date key to another,
// negative when to is before from.
func DaysBetween(from, to string) (int, error) {
	start, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// WeekStart returns the Sunday that starts the week containing date.
func WeekStart(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(DateLayout), nil
}

// LookbackDates lists the n dates ending at today, newest first.
func LookbackDates(today string, n int) ([]string, error) {
	end, err := ParseDate(today)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []string{}, nil
	}
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, end.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates, nil
}

// MonthBounds returns the first and last date of a month.
func MonthBounds(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// WeekdaySet is a set of weekdays, Sunday = 0.
type WeekdaySet uint8

// NewWeekdaySet builds a set from weekday numbers.
func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var set WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		set |= 1 << uint(d)
	}
	return set, nil
}

// ParseWeekdays parses a comma-joined weekday list such as "1,2,3,4,5".
// Blank items are ignored.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, part)
		}
		days = append(days, d)
	}
	return NewWeekdaySet(days...)
}

// Has reports whether the set contains the weekday.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Days returns the weekdays of the set in ascending order.
func (s WeekdaySet) Days() []int {
	days := []int{}
	for d := 0; d <= 6; d++ {
		if s.Has(time.Weekday(d)) {
			days = append(days, d)
		}
	}
	return days
}

// String joins the weekdays with commas, the storage form of operating_days.
func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// SortDates sorts date keys ascending in place. Date keys are zero padded, so
// lexicographic order is chronological.
func SortDates(dates []string) {
	sort.Strings(dates)
}

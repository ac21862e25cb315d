package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidCount = errors.New("invalid count, expected a non-negative whole number")

var groupedDigits = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)

// ParseCount parses a headcount typed by a user. Blank, non-numeric,
// fractional and negative input is an error, never a silent zero.
// Thousands separators are accepted only in groups of three ("1,200").
func ParseCount(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if strings.Contains(trimmed, ",") {
		if !groupedDigits.MatchString(trimmed) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
		}
		trimmed = strings.ReplaceAll(trimmed, ",", "")
	}
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidCount)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		// Spreadsheet cells often hold whole numbers as floats ("12.0").
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
	}
	return n, nil
}

// ParseOptionalCount is ParseCount for optional input: blank gives nil.
func ParseOptionalCount(s string) (*int, error) {
	if IsEmpty(s) {
		return nil, nil
	}
	n, err := ParseCount(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ValidateCount checks an already numeric count.
func ValidateCount(field string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s is %d", ErrInvalidCount, field, n)
	}
	return nil
}

package planning

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"facility_dashboard_backend/internal/models"
)

// Granularity selects how Aggregate buckets records.
type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

var ErrInvalidGranularity = errors.New("invalid granularity, expected daily or weekly")

// CountRecord is a dated count, the common shape of visits and meals.
type CountRecord struct {
	Date  string
	Count int
}

// VisitCounts adapts visit records for Aggregate.
func VisitCounts(visits []models.VisitRecord) []CountRecord {
	records := make([]CountRecord, len(visits))
	for i, v := range visits {
		records[i] = CountRecord{Date: v.Date, Count: v.Count}
	}
	return records
}

// MealCounts adapts meal records for Aggregate.
func MealCounts(meals []models.MealRecord) []CountRecord {
	records := make([]CountRecord, len(meals))
	for i, m := range meals {
		records[i] = CountRecord{Date: m.Date, Count: m.Count}
	}
	return records
}

// Aggregate turns dated records into a chronological series. Daily keeps one
// point per record; weekly sums records per Sunday-start week. The input is
// not modified and labels are left empty (see Label).
func Aggregate(records []CountRecord, g Granularity) ([]models.SeriesPoint, error) {
	switch g {
	case Daily:
		sorted := slices.Clone(records)
		slices.SortStableFunc(sorted, func(a, b CountRecord) int {
			return strings.Compare(a.Date, b.Date)
		})
		points := make([]models.SeriesPoint, len(sorted))
		for i, r := range sorted {
			points[i] = models.SeriesPoint{Key: r.Date, Count: r.Count}
		}
		return points, nil
	case Weekly:
		sums := make(map[string]int)
		for _, r := range records {
			start, err := WeekStart(r.Date)
			if err != nil {
				return nil, err
			}
			sums[start] += r.Count
		}
		keys := make([]string, 0, len(sums))
		for k := range sums {
			keys = append(keys, k)
		}
		SortDates(keys)
		points := make([]models.SeriesPoint, len(keys))
		for i, k := range keys {
			points[i] = models.SeriesPoint{Key: k, Count: sums[k]}
		}
		return points, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
	}
}

// Label fills in display labels: "06/10" for daily points and "6월 9일 주"
// for weekly points.
func Label(points []models.SeriesPoint, g Granularity) []models.SeriesPoint {
	labeled := slices.Clone(points)
	for i, p := range labeled {
		t, err := ParseDate(p.Key)
		if err != nil {
			labeled[i].Label = p.Key
			continue
		}
		if g == Weekly {
			labeled[i].Label = fmt.Sprintf("%d월 %d일 주", int(t.Month()), t.Day())
		} else {
			labeled[i].Label = t.Format("01/02")
		}
	}
	return labeled
}

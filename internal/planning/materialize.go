package planning

import (
	"facility_dashboard_backend/internal/models"
)

// Materialize enumerates every date from startDate to endDate inclusive and
// emits a DailyConfig for each date whose weekday is in weekdays. A reversed
// range or an empty set yields an empty slice.
func Materialize(startDate, endDate string, weekdays WeekdaySet, capacity, mealCount int) ([]models.DailyConfig, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}

	configs := []models.DailyConfig{}
	if weekdays == 0 {
		return configs, nil
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if weekdays.Has(d.Weekday()) {
			configs = append(configs, models.DailyConfig{
				Date:      d.Format(DateLayout),
				Capacity:  capacity,
				MealCount: mealCount,
			})
		}
	}
	return configs, nil
}

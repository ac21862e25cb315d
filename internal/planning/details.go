package planning

import (
	"facility_dashboard_backend/internal/models"
)

// BuildDetails produces one DailyDetail per day from today-(lookbackDays-1)
// to today, newest first. Records are joined on exact date equality; a date
// without a record counts as zero.
func BuildDetails(
	today string,
	lookbackDays int,
	visits []models.VisitRecord,
	meals []models.MealRecord,
	configs []models.DailyConfig,
	settings models.GlobalSettings,
) ([]models.DailyDetail, error) {
	dates, err := LookbackDates(today, lookbackDays)
	if err != nil {
		return nil, err
	}

	visitsByDate := make(map[string]int, len(visits))
	for _, v := range visits {
		visitsByDate[v.Date] = v.Count
	}
	mealsByDate := make(map[string]int, len(meals))
	for _, m := range meals {
		mealsByDate[m.Date] = m.Count
	}
	configsByDate := make(map[string]models.DailyConfig, len(configs))
	for _, c := range configs {
		configsByDate[c.Date] = c
	}

	details := make([]models.DailyDetail, 0, len(dates))
	for _, date := range dates {
		var override *models.DailyConfig
		if c, ok := configsByDate[date]; ok {
			override = &c
		}
		capacity := Resolve(date, settings, override)
		details = append(details, Detail(date, visitsByDate[date], mealsByDate[date], capacity))
	}
	return details, nil
}

package models

// Capacity is the effective capacity and base meal count of one date.
type Capacity struct {
	Capacity      int `json:"capacity"`
	BaseMealCount int `json:"base_meal_count"`
}

// DailyDetail is the derived planning row of one date. It is never stored.
type DailyDetail struct {
	Date        string `json:"date"`
	Visits      int    `json:"visits"`
	EventMeals  int    `json:"event_meals"`
	BaseMeals   int    `json:"base_meals"`
	TotalMeals  int    `json:"total_meals"`
	Capacity    int    `json:"capacity"`
	Remaining   int    `json:"remaining"`
	IsAvailable bool   `json:"is_available"`
}

// SeriesPoint is one point of a chart series. Key is the date (daily) or the
// Sunday starting the week (weekly).
type SeriesPoint struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard is the payload of the dashboard view.
type Dashboard struct {
	Range        string        `json:"range"`       // day, week or month
	Granularity  string        `json:"granularity"` // daily or weekly
	Summary      DailyDetail   `json:"summary"` // today
	VisitsSeries []SeriesPoint `json:"visits_series"`
	MealsSeries  []SeriesPoint `json:"meals_series"`
	Details      []DailyDetail `json:"details"` // newest first
}

// StatsSummary holds the sidebar totals.
type StatsSummary struct {
	TotalEvents int     `json:"total_events"`
	TotalMeals  int     `json:"total_meals"`
	Upcoming    []Event `json:"upcoming"`
}

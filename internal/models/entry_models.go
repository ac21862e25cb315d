package models

// EntryResult reports the outcome of an entry submission.
type EntryResult struct {
	Saved   bool     `json:"saved"`
	Message string   `json:"message"`
	Written []string `json:"written,omitempty"` // tables written to
}

// DayEntry is everything recorded for one date.
type DayEntry struct {
	Date     string       `json:"date"`
	Visit    *VisitRecord `json:"visit,omitempty"`
	Meal     *MealRecord  `json:"meal,omitempty"`
	Events   []Event      `json:"events"`
	Override *DailyConfig `json:"override,omitempty"`
	Detail   DailyDetail  `json:"detail"`
}

// ImportRowError describes a spreadsheet row that was rejected.
type ImportRowError struct {
	Row     int    `json:"row"` // 1-based sheet row number
	Message string `json:"message"`
}

// ImportResult reports the outcome of a spreadsheet import.
type ImportResult struct {
	TotalRows      int              `json:"total_rows"`
	ProcessedRows  int              `json:"processed_rows"`
	SkippedRows    int              `json:"skipped_rows"`
	Rejected       []ImportRowError `json:"rejected"`
	EventsInserted int              `json:"events_inserted"`
	MealsUpserted  int              `json:"meals_upserted"`
	VisitsUpserted int              `json:"visits_upserted"`
	Message        string           `json:"message"`
}

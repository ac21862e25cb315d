package models

// CalendarCell is one day cell of the month grid.
type CalendarCell struct {
	Date    string  `json:"date"`
	Day     int     `json:"day"`
	InMonth bool    `json:"in_month"`
	IsToday bool    `json:"is_today"`
	Events  []Event `json:"events,omitempty"`
}

// CalendarMonth is a Sunday-start month grid with its events.
type CalendarMonth struct {
	Year   int            `json:"year"`
	Month  int            `json:"month"`
	Cells  []CalendarCell `json:"cells"`
	Events []Event        `json:"events"`
}

package models

// MealRecord holds the event-driven meal demand for one date. The recurring
// base meal count comes from GlobalSettings or a DailyConfig override.
type MealRecord struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Count       int    `json:"count"`
	IsAvailable bool   `json:"is_available"`
}

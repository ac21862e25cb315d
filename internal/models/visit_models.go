package models

// VisitRecord holds the visitor count for one date. One record per date.
type VisitRecord struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

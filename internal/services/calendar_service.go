package services

import (
	"context"
	"fmt"
	"time"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
)

// --- CalendarService Interface ---
type CalendarService interface {
	// Month returns the Sunday-start grid of a month; year and month 0 mean
	// the current month. departments filters events; empty means all.
	Month(ctx context.Context, year, month int, departments []string) (*models.CalendarMonth, error)
}

type calendarService struct {
	eventRepo repositories.EventRepository
	clock     Clock
	loc       *time.Location
}

// NewCalendarService creates a new instance of CalendarService.
func NewCalendarService(eventRepo repositories.EventRepository, clock Clock, loc *time.Location) CalendarService {
	return &calendarService{eventRepo: eventRepo, clock: clock, loc: loc}
}

func (s *calendarService) Month(ctx context.Context, year, month int, departments []string) (*models.CalendarMonth, error) {
	today := s.clock.today(s.loc)
	if year == 0 && month == 0 {
		t, err := planning.ParseDate(today)
		if err != nil {
			return nil, err
		}
		year, month = t.Year(), int(t.Month())
	}
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return nil, fmt.Errorf("%w: %d-%02d", ErrInvalidMonth, year, month)
	}
	filter := make([]models.Department, 0, len(departments))
	for _, d := range departments {
		department, err := parseDepartment(d)
		if err != nil {
			return nil, err
		}
		filter = append(filter, department)
	}

	first, last := planning.MonthBounds(year, time.Month(month))
	events, err := s.eventRepo.ListRange(ctx, first, last, filter, 0)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string][]models.Event)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	start, err := planning.ParseDate(first)
	if err != nil {
		return nil, err
	}
	var cells []models.CalendarCell
	for i := int(start.Weekday()); i > 0; i-- {
		d := start.AddDate(0, 0, -i)
		cells = append(cells, models.CalendarCell{Date: planning.FormatDate(d), Day: d.Day()})
	}
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		date := planning.FormatDate(d)
		cells = append(cells, models.CalendarCell{
			Date:    date,
			Day:     d.Day(),
			InMonth: true,
			IsToday: date == today,
			Events:  byDate[date],
		})
	}

	return &models.CalendarMonth{Year: year, Month: month, Cells: cells, Events: events}, nil
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/planning"
	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/pkg/utils"
)

// Spreadsheet header names.
const (
	ColumnDate       = "날짜"
	ColumnEventTitle = "행사명"
	ColumnDepartment = "부서"
	ColumnMealCount  = "급식인원"
	ColumnVisitCount = "방문자수"
)

var importColumns = []string{ColumnDate, ColumnEventTitle, ColumnDepartment, ColumnMealCount, ColumnVisitCount}

const (
	templateSheet          = "입력"
	MessageNothingToImport = "no rows to import"
)

// Accepted textual date formats besides Excel serial numbers.
var sheetDateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "2006-1-2", "2006/1/2", "2006.1.2"}

// --- ImportService Interface ---
type ImportService interface {
	Import(ctx context.Context, r io.Reader) (*models.ImportResult, error)
	Template() (*bytes.Buffer, error)
}

type importService struct {
	eventRepo repositories.EventRepository
	mealRepo  repositories.MealRepository
	visitRepo repositories.VisitRepository
	newID     func() string
}

// NewImportService creates a new instance of ImportService.
func NewImportService(
	eventRepo repositories.EventRepository,
	mealRepo repositories.MealRepository,
	visitRepo repositories.VisitRepository,
) ImportService {
	return &importService{
		eventRepo: eventRepo,
		mealRepo:  mealRepo,
		visitRepo: visitRepo,
		newID:     uuid.NewString,
	}
}

// Import reads the first sheet of an .xlsx workbook. Rows without a date are
// skipped; rows with an invalid date, count or department are rejected with
// their row number. The remaining rows are written as three batches issued
// concurrently. On a write failure the result is returned along with a
// *WriteError.
func (s *importService) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidWorkbook)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: worksheet is empty", ErrInvalidWorkbook)
	}

	header := make(map[string]int)
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	if _, ok := header[ColumnDate]; !ok {
		return nil, fmt.Errorf("%w: missing %s column", ErrInvalidWorkbook, ColumnDate)
	}
	column := func(row []string, name string) string {
		idx, ok := header[name]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}

	result := &models.ImportResult{TotalRows: len(rows) - 1, Rejected: []models.ImportRowError{}}
	var events []models.Event
	meals := newDateBatch[models.MealRecord]()
	visits := newDateBatch[models.VisitRecord]()

	for i, row := range rows[1:] {
		rowNumber := i + 2
		reject := func(format string, args ...any) {
			result.Rejected = append(result.Rejected, models.ImportRowError{Row: rowNumber, Message: fmt.Sprintf(format, args...)})
		}

		rawDate := column(row, ColumnDate)
		if rawDate == "" {
			result.SkippedRows++
			continue
		}
		date, err := parseSheetDate(rawDate)
		if err != nil {
			reject("invalid date %q", rawDate)
			continue
		}
		title := column(row, ColumnEventTitle)
		department, err := parseDepartment(column(row, ColumnDepartment))
		if err != nil {
			reject("unknown department %q", column(row, ColumnDepartment))
			continue
		}
		mealCount, err := utils.ParseOptionalCount(column(row, ColumnMealCount))
		if err != nil {
			reject("invalid %s %q", ColumnMealCount, column(row, ColumnMealCount))
			continue
		}
		visitCount, err := utils.ParseOptionalCount(column(row, ColumnVisitCount))
		if err != nil {
			reject("invalid %s %q", ColumnVisitCount, column(row, ColumnVisitCount))
			continue
		}
		if title == "" && mealCount == nil && visitCount == nil {
			result.SkippedRows++
			continue
		}

		result.ProcessedRows++
		if title != "" {
			events = append(events, models.Event{ID: s.newID(), Title: title, Date: date, Department: department})
		}
		if mealCount != nil {
			meals.put(date, models.MealRecord{Date: date, Count: *mealCount, IsAvailable: true})
		}
		if visitCount != nil {
			visits.put(date, models.VisitRecord{Date: date, Count: *visitCount})
		}
	}

	var writes []write
	if len(events) > 0 {
		writes = append(writes, write{table: store.TableEvents, run: func(ctx context.Context) error {
			return s.eventRepo.Insert(ctx, events)
		}})
	}
	if mealRows := meals.rows(); len(mealRows) > 0 {
		writes = append(writes, write{table: store.TableMeals, run: func(ctx context.Context) error {
			return s.mealRepo.Upsert(ctx, mealRows)
		}})
	}
	if visitRows := visits.rows(); len(visitRows) > 0 {
		writes = append(writes, write{table: store.TableVisits, run: func(ctx context.Context) error {
			return s.visitRepo.Upsert(ctx, visitRows)
		}})
	}
	if len(writes) == 0 {
		result.Message = MessageNothingToImport
		return result, nil
	}

	written, err := runWrites(ctx, writes)
	for _, table := range written {
		switch table {
		case store.TableEvents:
			result.EventsInserted = len(events)
		case store.TableMeals:
			result.MealsUpserted = len(meals.order)
		case store.TableVisits:
			result.VisitsUpserted = len(visits.order)
		}
	}
	logFields := map[string]interface{}{
		"total_rows":     result.TotalRows,
		"processed_rows": result.ProcessedRows,
		"rejected_rows":  len(result.Rejected),
		"events":         len(events),
		"meals":          len(meals.order),
		"visits":         len(visits.order),
	}
	if err != nil {
		utils.LogError(err, "Spreadsheet import partially failed", logFields)
		result.Message = err.Error()
		return result, err
	}
	utils.LogInfo("Spreadsheet imported", logFields)
	result.Message = fmt.Sprintf("imported %d rows", result.ProcessedRows)
	return result, nil
}

// Template returns an empty workbook with the import header row and one
// example row.
func (s *importService) Template() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	example := []any{"2024-06-10", "진로 체험 행사", models.DepartmentNames[models.DefaultDepartment], 20, 12}
	widths := []float64{14, 28, 14, 12, 12}
	for i, name := range importColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(templateSheet, col+"1", name); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(templateSheet, col+"2", example[i]); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(templateSheet, col, col, widths[i]); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(importColumns))
	if err := f.SetCellStyle(templateSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return buf, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseSheetDate accepts the textual layouts above and Excel serial numbers.
func parseSheetDate(value string) (string, error) {
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return planning.FormatDate(t), nil
		}
	}
	// Serials outside 1954..2119 are more likely typos than dates.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 20000 && serial <= 80000 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return planning.FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// dateBatch keeps one record per date, the last one seen, in first-seen
// order. A single upsert statement may not touch the same key twice.
type dateBatch[T any] struct {
	order  []string
	byDate map[string]T
}

func newDateBatch[T any]() *dateBatch[T] {
	return &dateBatch[T]{byDate: make(map[string]T)}
}

func (b *dateBatch[T]) put(date string, record T) {
	if _, ok := b.byDate[date]; !ok {
		b.order = append(b.order, date)
	}
	b.byDate[date] = record
}

func (b *dateBatch[T]) rows() []T {
	rows := make([]T, len(b.order))
	for i, date := range b.order {
		rows[i] = b.byDate[date]
	}
	return rows
}

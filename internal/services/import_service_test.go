package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// workbook builds an .xlsx with the given rows on its first sheet.
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newImportService(env *testEnv) *importService {
	svc := NewImportService(env.events, env.meals, env.visits).(*importService)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("event-%d", n)
	}
	return svc
}

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	file := workbook(t, [][]any{
		{"날짜", "행사명", "부서", "급식인원", "방문자수"},
		{"2024-06-10", "Career fair", "creative", 20, 12},
		{"2024/06/11", "", "", "", 8},
		{"", "No date", "", 5, 5},
		{"2024-06-12", "Bad count", "", "many", ""},
		{"2024-06-13", "Bad department", "sales", "", ""},
		{"2024.06.10", "", "", 25, ""},
		{"45455", "Serial date", "총무부", "", ""},
		{"2024-06-14", "", "", "", ""},
	})

	result, err := newImportService(env).Import(ctx, file)

	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalRows)
	assert.Equal(t, 4, result.ProcessedRows)
	assert.Equal(t, 2, result.SkippedRows)
	require.Len(t, result.Rejected, 2)
	assert.Equal(t, 5, result.Rejected[0].Row)
	assert.Contains(t, result.Rejected[0].Message, "급식인원")
	assert.Equal(t, 6, result.Rejected[1].Row)
	assert.Equal(t, 2, result.EventsInserted)
	assert.Equal(t, 1, result.MealsUpserted)
	assert.Equal(t, 2, result.VisitsUpserted)

	// The later row for 2024-06-10 wins.
	meal, err := env.meals.GetByDate(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, 25, meal.Count)
	assert.True(t, meal.IsAvailable)

	events, err := env.events.ListRange(ctx, "2024-01-01", "2024-12-31", nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.DepartmentCreative, events[0].Department)
	assert.Equal(t, "2024-06-12", events[1].Date)
	assert.Equal(t, models.DepartmentGeneral, events[1].Department)
}

func TestImportService_NothingToImport(t *testing.T) {
	env := newTestEnv(t)
	file := workbook(t, [][]any{{"날짜", "행사명"}, {"", "x"}})

	result, err := newImportService(env).Import(context.Background(), file)

	require.NoError(t, err)
	assert.Equal(t, MessageNothingToImport, result.Message)
	assert.Empty(t, env.backend.Rows(store.TableEvents))
}

func TestImportService_InvalidWorkbook(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env)

	_, err := svc.Import(context.Background(), strings.NewReader("not a spreadsheet"))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)

	_, err = svc.Import(context.Background(), workbook(t, [][]any{{"행사명", "부서"}, {"Fair", "planning"}}))
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
}

func TestImportService_WriteFailureKeepsResult(t *testing.T) {
	env := newTestEnv(t)
	env.backend.FailWith(store.TableVisits, errors.New("disk full"))
	file := workbook(t, [][]any{
		{"날짜", "급식인원", "방문자수"},
		{"2024-06-10", 20, 12},
	})

	result, err := newImportService(env).Import(context.Background(), file)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.MealsUpserted)
	assert.Equal(t, 0, result.VisitsUpserted)
	assert.Equal(t, "disk full", result.Message)
}

func TestImportService_TemplateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := newImportService(env)

	buf, err := svc.Template()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, importColumns, rows[0])

	// The example row imports cleanly.
	result, err := svc.Import(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProcessedRows)
	assert.Empty(t, result.Rejected)
}

func TestParseSheetDate(t *testing.T) {
	for input, want := range map[string]string{
		"2024-06-10": "2024-06-10",
		"2024/6/1":   "2024-06-01",
		"2024.06.10": "2024-06-10",
		"45453":      "2024-06-10",
	} {
		got, err := parseSheetDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := parseSheetDate("2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

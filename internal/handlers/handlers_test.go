package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/services"
	"facility_dashboard_backend/internal/store"
	"facility_dashboard_backend/internal/store/memory"
	"facility_dashboard_backend/pkg/utils"
)

func TestServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: %q", services.ErrInvalidDate, "x"), http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{services.ErrInvalidWeekday, http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{services.ErrInvalidPassphrase, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
		{repositories.ErrNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, utils.ErrCodeInternalServerError},
	}
	for _, tc := range cases {
		apiErr := serviceError(tc.err, "failed")
		assert.Equal(t, tc.status, apiErr.StatusCode, tc.err.Error())
		assert.Equal(t, tc.code, apiErr.Code, tc.err.Error())
	}
}

func TestServiceError_StoreMessageInDetails(t *testing.T) {
	storeErr := &store.Error{Message: "duplicate key value", Details: "Key (id)=(1) already exists."}
	err := fmt.Errorf("%w: inserting events: %w", repositories.ErrDatabaseError, storeErr)

	apiErr := serviceError(err, "Failed to save entry.")

	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, utils.ErrCodeStoreError, apiErr.Code)
	assert.Equal(t, "duplicate key value (Key (id)=(1) already exists.)", apiErr.Details)
}

func newImportEngine(backend *memory.Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewEntryHandler(nil, services.NewImportService(
		repositories.NewEventRepository(backend),
		repositories.NewMealRepository(backend),
		repositories.NewVisitRepository(backend),
	))
	engine := gin.New()
	engine.POST("/entries/import", handler.ImportEntries)
	return engine
}

func multipartUpload(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
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
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "entries.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestImportEntries(t *testing.T) {
	backend := memory.NewBackend()
	engine := newImportEngine(backend)
	body, contentType := multipartUpload(t, [][]any{
		{"날짜", "행사명", "급식인원"},
		{"2024-06-10", "Fair", 20},
	})

	req := httptest.NewRequest(http.MethodPost, "/entries/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"processed_rows":1`)
	assert.Len(t, backend.Rows(store.TableEvents), 1)
}

func TestImportEntries_PartialFailureReturnsResult(t *testing.T) {
	backend := memory.NewBackend()
	backend.FailWith(store.TableMeals, errors.New("meals table is locked"))
	engine := newImportEngine(backend)
	body, contentType := multipartUpload(t, [][]any{
		{"날짜", "행사명", "급식인원"},
		{"2024-06-10", "Fair", 20},
	})

	req := httptest.NewRequest(http.MethodPost, "/entries/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "meals table is locked")
	assert.Contains(t, w.Body.String(), `"events_inserted":1`)
}

func TestImportEntries_MissingFile(t *testing.T) {
	engine := newImportEngine(memory.NewBackend())

	req := httptest.NewRequest(http.MethodPost, "/entries/import", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboard_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backend := memory.NewBackend()
	backend.FailWith(store.TableVisits, errors.New("relation \"visits\" does not exist"))
	dailyConfigs := repositories.NewDailyConfigRepository(backend)
	settings := services.NewSettingsService(repositories.NewSettingRepository(backend), dailyConfigs)
	handler := NewDashboardHandler(services.NewDashboardService(
		repositories.NewVisitRepository(backend),
		repositories.NewMealRepository(backend),
		dailyConfigs,
		settings,
		nil,
		nil,
	))
	engine := gin.New()
	engine.GET("/dashboard", handler.GetDashboard)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil).WithContext(context.Background())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `relation \"visits\" does not exist`)
}

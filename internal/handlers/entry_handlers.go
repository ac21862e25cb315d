package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/services"
	"facility_dashboard_backend/pkg/utils"
)

const (
	maxImportSize    = 10 << 20
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	templateFilename = "entry_import_template.xlsx"
)

// EntryHandler handles daily entries and spreadsheet imports.
type EntryHandler struct {
	entryService  services.EntryService
	importService services.ImportService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(es services.EntryService, is services.ImportService) *EntryHandler {
	return &EntryHandler{entryService: es, importService: is}
}

// SubmitEntry handles POST /entries.
func (h *EntryHandler) SubmitEntry(c *gin.Context) {
	var req services.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.entryService.Submit(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to save entry.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDayEntry handles GET /entries/:date.
func (h *EntryHandler) GetDayEntry(c *gin.Context) {
	entry, err := h.entryService.GetDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondServiceError(c, err, "Failed to load entry.")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ImportEntries handles POST /entries/import with a multipart "file" field.
func (h *EntryHandler) ImportEntries(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.RespondValidationFailed(c, "a .xlsx file is required in the \"file\" field")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondServiceError(c, err, "Failed to read upload.")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), file)
	if err != nil {
		var writeErr *services.WriteError
		if errors.As(err, &writeErr) && result != nil {
			_ = c.Error(err)
			apiErr := serviceError(err, "Import partially failed.")
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr, "result": result})
			return
		}
		respondServiceError(c, err, "Failed to import spreadsheet.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadImportTemplate handles GET /entries/import/template.
func (h *EntryHandler) DownloadImportTemplate(c *gin.Context) {
	buf, err := h.importService.Template()
	if err != nil {
		respondServiceError(c, err, "Failed to build template.")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+templateFilename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/services"
	"facility_dashboard_backend/pkg/utils"
)

var validationErrors = []error{
	services.ErrInvalidDate,
	services.ErrInvalidCount,
	services.ErrInvalidDepartment,
	services.ErrInvalidRange,
	services.ErrInvalidWeekday,
	services.ErrInvalidMonth,
	services.ErrInvalidWorkbook,
}

// serviceError maps a service error to the API error returned to clients.
// Store failures keep the store's own message in details.
func serviceError(err error, message string) *utils.APIError {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, message, err.Error())
		}
	}
	var writeErr *services.WriteError
	switch {
	case errors.Is(err, services.ErrInvalidPassphrase):
		return utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid passphrase.", "")
	case errors.Is(err, repositories.ErrNotFound):
		return utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, message, err.Error())
	case errors.As(err, &writeErr), errors.Is(err, repositories.ErrDatabaseError):
		return utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeStoreError, message, services.StoreMessage(err))
	default:
		return utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, message, "Internal error")
	}
}

func respondServiceError(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	utils.RespondWithError(c, serviceError(err, message))
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
}

package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/storage"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired),
		errors.Is(err, auth.ErrManagerAccessRequired),
		errors.Is(err, auth.ErrEmployeeClaimMissing):
		Forbidden(w, err.Error())

	// Source domain errors
	case errors.Is(err, source.ErrSourceNotFound):
		NotFound(w, "Source not found")
	case errors.Is(err, source.ErrImportLogNotFound):
		NotFound(w, "Import log not found")
	case errors.Is(err, source.ErrSourceNameExists):
		Conflict(w, "Source name already exists")
	case errors.Is(err, source.ErrSyncInProgress):
		Conflict(w, "A sync is already running for this source")
	case errors.Is(err, source.ErrNoTransport):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, "Invalid file name", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNotAManager):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidDaySelector),
		errors.Is(err, attendance.ErrInvalidDate):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Today(w http.ResponseWriter, r *http.Request)
	ManagerDashboard(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	reconciliationService attendance.ReconciliationService
}

func NewAttendanceHandler(reconciliationService attendance.ReconciliationService) AttendanceHandler {
	return &attendanceHandlerImpl{
		reconciliationService: reconciliationService,
	}
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationService.TodaySnapshot(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ManagerDashboard implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManagerDashboard(w http.ResponseWriter, r *http.Request) {
	selector, err := attendance.ParseDaySelector(r.URL.Query().Get("day"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	principal, err := middleware.CurrentPrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if principal.EmployeeID == nil {
		response.HandleError(w, auth.ErrEmployeeClaimMissing)
		return
	}

	result, err := h.reconciliationService.ManagerDashboard(r.Context(), *principal.EmployeeID, selector)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Reconcile implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(employeeID) {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	var day time.Time
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, ok := validator.IsValidDate(date)
		if !ok {
			response.HandleError(w, attendance.ErrInvalidDate)
			return
		}
		day = parsed
	}

	result, err := h.reconciliationService.Reconcile(r.Context(), employeeID, day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

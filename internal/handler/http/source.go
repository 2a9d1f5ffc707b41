package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/fetcher"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type SourceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Test(w http.ResponseWriter, r *http.Request)
	Sync(w http.ResponseWriter, r *http.Request)
	Upload(w http.ResponseWriter, r *http.Request)
	ListImportLogs(w http.ResponseWriter, r *http.Request)
	ClearImportLogs(w http.ResponseWriter, r *http.Request)
}

type sourceHandlerImpl struct {
	sourceService source.SourceService
}

func NewSourceHandler(sourceService source.SourceService) SourceHandler {
	return &sourceHandlerImpl{
		sourceService: sourceService,
	}
}

// Create implements SourceHandler.
func (h *sourceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req source.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create source decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.sourceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Source created", result)
}

// List implements SourceHandler.
func (h *sourceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.sourceService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements SourceHandler.
func (h *sourceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	result, err := h.sourceService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements SourceHandler.
func (h *sourceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	var req source.UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update source decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id

	result, err := h.sourceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Source updated", result)
}

// Delete implements SourceHandler.
func (h *sourceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	if err := h.sourceService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Source deleted", nil)
}

// Test implements SourceHandler.
func (h *sourceHandlerImpl) Test(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	result, err := h.sourceService.Test(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Sync implements SourceHandler. The run continues after the response.
func (h *sourceHandlerImpl) Sync(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	if err := h.sourceService.TriggerSync(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Sync started", map[string]string{"source_id": id})
}

// Upload implements SourceHandler.
func (h *sourceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid source ID", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, fetcher.MaxPayloadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, fmt.Sprintf("Failed to parse form data (max %d MB)", fetcher.MaxPayloadBytes>>20), nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.sourceService.AttachFile(r.Context(), id, fileHeader.Filename, file)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "File uploaded", result)
}

// ListImportLogs implements SourceHandler.
func (h *sourceHandlerImpl) ListImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := source.DefaultLogPageSize
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}

	results, err := h.sourceService.ListImportLogs(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, &response.Meta{Limit: source.ClampLogLimit(limit), Count: len(results)})
}

// ClearImportLogs implements SourceHandler.
func (h *sourceHandlerImpl) ClearImportLogs(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.sourceService.ClearImportLogs(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Import logs cleared", map[string]int64{"deleted": deleted})
}

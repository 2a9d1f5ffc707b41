package source

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
)

const (
	DefaultLogPageSize = 20
	MaxLogPageSize     = 100
)

var allowedMethods = []string{"GET", "POST"}

// ========================================
// SOURCE DTOs
// ========================================

type CreateSourceRequest struct {
	Name            string            `json:"name"`
	Kind            Kind              `json:"kind"`
	URL             string            `json:"url"`
	Method          string            `json:"method"`
	Headers         map[string]string `json:"headers"`
	OAuth           *OAuthConfig      `json:"oauth,omitempty"`
	SyncEnabled     bool              `json:"sync_enabled"`
	IntervalHours   int               `json:"interval_hours"`
	IntervalMinutes int               `json:"interval_minutes"`
}

func (r *CreateSourceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if r.Kind != KindAPI && r.Kind != KindCSV {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be api or csv",
		})
	}

	// A csv source may be created empty and receive an uploaded file later
	if r.Kind == KindAPI && validator.IsEmpty(r.URL) {
		errs = append(errs, validator.ValidationError{
			Field:   "url",
			Message: "url is required for api sources",
		})
	}
	if !validator.IsEmpty(r.URL) && !validator.IsValidHTTPURL(r.URL) {
		errs = append(errs, validator.ValidationError{
			Field:   "url",
			Message: "url must be an absolute http(s) URL",
		})
	}

	if r.Method != "" && !validator.IsInSlice(strings.ToUpper(r.Method), allowedMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be GET or POST",
		})
	}

	errs = append(errs, validateInterval(r.IntervalHours, r.IntervalMinutes)...)
	errs = append(errs, validateOAuth(r.OAuth)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateSourceRequest struct {
	ID              string             `json:"-"`
	Name            *string            `json:"name,omitempty"`
	URL             *string            `json:"url,omitempty"`
	Method          *string            `json:"method,omitempty"`
	Headers         *map[string]string `json:"headers,omitempty"`
	OAuth           *OAuthConfig       `json:"oauth,omitempty"`
	SyncEnabled     *bool              `json:"sync_enabled,omitempty"`
	IntervalHours   *int               `json:"interval_hours,omitempty"`
	IntervalMinutes *int               `json:"interval_minutes,omitempty"`
	Status          *Status            `json:"status,omitempty"`
}

func (r *UpdateSourceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}

	if r.URL != nil && !validator.IsEmpty(*r.URL) && !validator.IsValidHTTPURL(*r.URL) {
		errs = append(errs, validator.ValidationError{
			Field:   "url",
			Message: "url must be an absolute http(s) URL",
		})
	}

	if r.Method != nil && !validator.IsInSlice(strings.ToUpper(*r.Method), allowedMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be GET or POST",
		})
	}

	hours, minutes := 0, 1
	if r.IntervalHours != nil {
		hours = *r.IntervalHours
	}
	if r.IntervalMinutes != nil {
		minutes = *r.IntervalMinutes
	}
	if r.IntervalHours != nil || r.IntervalMinutes != nil {
		errs = append(errs, validateInterval(hours, minutes)...)
	}

	if r.Status != nil {
		switch *r.Status {
		case StatusDraft, StatusTested, StatusActive:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be draft, tested or active",
			})
		}
	}

	errs = append(errs, validateOAuth(r.OAuth)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateInterval(hours, minutes int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if hours < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "interval_hours",
			Message: "interval_hours must not be negative",
		})
	}
	if minutes < 0 || minutes > 59 {
		errs = append(errs, validator.ValidationError{
			Field:   "interval_minutes",
			Message: "interval_minutes must be between 0 and 59",
		})
	}
	return errs
}

func validateOAuth(o *OAuthConfig) validator.ValidationErrors {
	if o == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !validator.IsValidHTTPURL(o.TokenURL) {
		errs = append(errs, validator.ValidationError{
			Field:   "oauth.token_url",
			Message: "token_url must be an absolute http(s) URL",
		})
	}
	if validator.IsEmpty(o.ClientID) {
		errs = append(errs, validator.ValidationError{
			Field:   "oauth.client_id",
			Message: "client_id is required",
		})
	}
	return errs
}

type SourceResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Kind            Kind              `json:"kind"`
	URL             string            `json:"url,omitempty"`
	FilePath        *string           `json:"file_path,omitempty"`
	Method          string            `json:"method"`
	Headers         map[string]string `json:"headers,omitempty"`
	OAuthClientID   *string           `json:"oauth_client_id,omitempty"`
	SyncEnabled     bool              `json:"sync_enabled"`
	IntervalHours   int               `json:"interval_hours"`
	IntervalMinutes int               `json:"interval_minutes"`
	Status          Status            `json:"status"`
	LastTestedAt    *string           `json:"last_tested_at,omitempty"`
	LastTestStatus  *string           `json:"last_test_status,omitempty"`
	LastTestMessage *string           `json:"last_test_message,omitempty"`
	LastSyncAt      *string           `json:"last_sync_at,omitempty"`
	LastSyncStatus  *string           `json:"last_sync_status,omitempty"`
	LastSyncMessage *string           `json:"last_sync_message,omitempty"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// NewSourceResponse maps a source for display. Header values are redacted.
func NewSourceResponse(src Source) SourceResponse {
	resp := SourceResponse{
		ID:              src.ID,
		Name:            src.Name,
		Kind:            src.Kind,
		URL:             src.URL,
		FilePath:        src.FilePath,
		Method:          src.Method,
		SyncEnabled:     src.SyncEnabled,
		IntervalHours:   src.IntervalHours,
		IntervalMinutes: src.IntervalMinutes,
		Status:          src.Status,
		LastTestedAt:    formatTime(src.LastTestedAt),
		LastTestStatus:  src.LastTestStatus,
		LastTestMessage: src.LastTestMessage,
		LastSyncAt:      formatTime(src.LastSyncAt),
		LastSyncStatus:  src.LastSyncStatus,
		LastSyncMessage: src.LastSyncMessage,
		CreatedAt:       src.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       src.UpdatedAt.Format(time.RFC3339),
	}
	if len(src.Headers) > 0 {
		resp.Headers = make(map[string]string, len(src.Headers))
		for k := range src.Headers {
			resp.Headers[k] = "***"
		}
	}
	if src.OAuth != nil {
		clientID := src.OAuth.ClientID
		resp.OAuthClientID = &clientID
	}
	return resp
}

// TestResult reports a dry fetch + parse of a source.
type TestResult struct {
	SourceID    string `json:"source_id"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DataType    string `json:"data_type,omitempty"`
	RecordCount int    `json:"record_count"`
	Status      Status `json:"status"`
}

// ========================================
// IMPORT LOG DTOs
// ========================================

type ImportLogResponse struct {
	ID            string                 `json:"id"`
	SourceID      string                 `json:"source_id"`
	SourceName    string                 `json:"source_name"`
	SourceURL     string                 `json:"source_url,omitempty"`
	Status        LogStatus              `json:"status"`
	TotalCount    int                    `json:"total_count"`
	ImportedCount int                    `json:"imported_count"`
	FailedCount   int                    `json:"failed_count"`
	StartedAt     string                 `json:"started_at"`
	CompletedAt   *string                `json:"completed_at,omitempty"`
	ErrorMessage  *string                `json:"error_message,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

func NewImportLogResponse(l ImportLog) ImportLogResponse {
	return ImportLogResponse{
		ID:            l.ID,
		SourceID:      l.SourceID,
		SourceName:    l.SourceName,
		SourceURL:     l.SourceURL,
		Status:        l.Status,
		TotalCount:    l.TotalCount,
		ImportedCount: l.ImportedCount,
		FailedCount:   l.FailedCount,
		StartedAt:     l.StartedAt.Format(time.RFC3339),
		CompletedAt:   formatTime(l.CompletedAt),
		ErrorMessage:  l.ErrorMessage,
		Metadata:      l.Metadata,
	}
}

// ClampLogLimit bounds the import log page size.
func ClampLogLimit(limit int) int {
	if limit <= 0 {
		return DefaultLogPageSize
	}
	if limit > MaxLogPageSize {
		return MaxLogPageSize
	}
	return limit
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

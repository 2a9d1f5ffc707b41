package source

import (
	"time"
)

type Kind string

const (
	KindAPI Kind = "api"
	KindCSV Kind = "csv"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusTested Status = "tested"
	StatusActive Status = "active"
)

// MinSyncInterval is the floor applied to any configured interval.
const MinSyncInterval = time.Minute

// Source is one registered origin of employee or attendance data.
type Source struct {
	ID              string
	Name            string
	Kind            Kind
	URL             string
	FilePath        *string
	Method          string
	Headers         map[string]string
	OAuth           *OAuthConfig
	SyncEnabled     bool
	IntervalHours   int
	IntervalMinutes int
	Status          Status
	LastTestedAt    *time.Time
	LastTestStatus  *string
	LastTestMessage *string
	LastSyncAt      *time.Time
	LastSyncStatus  *string
	LastSyncMessage *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OAuthConfig enables a client-credentials token for API sources.
type OAuthConfig struct {
	TokenURL     string   `json:"token_url"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
}

// Interval returns the effective sync cadence, never below MinSyncInterval.
func (s Source) Interval() time.Duration {
	d := time.Duration(s.IntervalHours)*time.Hour + time.Duration(s.IntervalMinutes)*time.Minute
	if d < MinSyncInterval {
		return MinSyncInterval
	}
	return d
}

// Schedulable reports whether the scheduler should keep a timer for this source.
func (s Source) Schedulable() bool {
	return s.SyncEnabled && s.Status == StatusActive
}

// IsLocal reports whether the payload comes from file storage rather than HTTP.
func (s Source) IsLocal() bool {
	return s.FilePath != nil && *s.FilePath != ""
}

type LogStatus string

const (
	LogStatusInProgress LogStatus = "in_progress"
	LogStatusCompleted  LogStatus = "completed"
	LogStatusPartial    LogStatus = "partial"
	LogStatusFailed     LogStatus = "failed"
)

// ImportLog is the audit record of a single sync run.
type ImportLog struct {
	ID            string
	SourceID      string
	SourceName    string
	SourceURL     string
	Status        LogStatus
	TotalCount    int
	ImportedCount int
	FailedCount   int
	StartedAt     time.Time
	CompletedAt   *time.Time
	ErrorMessage  *string
	Metadata      map[string]interface{}
}

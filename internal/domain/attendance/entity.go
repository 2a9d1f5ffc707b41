package attendance

import (
	"time"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Record is the locally stored attendance row; at most one exists per employee per day.
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     string
	DeviceID   *string
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RemoteRow is one warehouse-reported punch row. It is never persisted.
type RemoteRow struct {
	CardNumber string `json:"card_no"`
	TIn        string `json:"t_in"`
	TOut       string `json:"t_out"`
	ResultTIn  string `json:"result_t_in"`
	ResultTOut string `json:"result_t_out"`
	Status     string `json:"status"`
	Present    bool   `json:"present"`
}

// DefaultShiftStart is the placeholder the warehouse reports when no punch exists.
const DefaultShiftStart = "05:30:00"

type Presence string

const (
	Present Presence = "present"
	Absent  Presence = "absent"
)

type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	OriginNone   Origin = "none"
)

// Decision is the reconciled presence of one employee on one day.
type Decision struct {
	EmployeeID   string
	CardNumber   string
	EmployeeName string
	Date         time.Time
	Status       Presence
	CheckIn      *time.Time
	CheckOut     *time.Time
	Source       Origin
}

// DaySelector picks the dashboard day relative to now.
type DaySelector string

const (
	SelectorToday   DaySelector = "today"
	SelectorLastDay DaySelector = "lastday"
)

// ParseDaySelector defaults to today for an empty value.
func ParseDaySelector(s string) (DaySelector, error) {
	switch DaySelector(s) {
	case "", SelectorToday:
		return SelectorToday, nil
	case SelectorLastDay:
		return SelectorLastDay, nil
	default:
		return "", ErrInvalidDaySelector
	}
}

// Day resolves the selector to a calendar day (midnight) in loc.
func (d DaySelector) Day(now time.Time, loc *time.Location) time.Time {
	day := DayOf(now, loc)
	if d == SelectorLastDay {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// DayOf truncates t to midnight in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

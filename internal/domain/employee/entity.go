package employee

import (
	"strings"
	"time"
)

// Employee is keyed by its card number. It is never deleted; a non-nil
// ExitDate marks it inactive.
type Employee struct {
	ID                string
	CardNumber        string
	FirstName         string
	LastName          string
	Phone             *string
	AltPhone          *string
	Email             *string
	PersonalEmail     *string
	Gender            *Gender
	IdentityNumber    *string
	ProfileImage      *string
	OperationalStatus *string
	WeeklyOff         *string
	ShiftStart        *string
	ShiftEnd          *string
	InterviewDate     *time.Time
	ExitDate          *time.Time
	DepartmentID      *string
	DesignationID     *string
	OrgUnitID         *string
	TimePolicyID      *string
	Metadata          map[string]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

// ParseGender accepts the usual single-letter and spelled-out source values.
func ParseGender(s string) *Gender {
	var g Gender
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		g = Male
	case "F", "FEMALE":
		g = Female
	case "O", "OTHER":
		g = Other
	default:
		return nil
	}
	return &g
}

// IsActive is the single activity predicate: an employee without an exit date is active.
func (e Employee) IsActive() bool {
	return e.ExitDate == nil
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// SplitName splits a free-text name into first name and the remainder.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

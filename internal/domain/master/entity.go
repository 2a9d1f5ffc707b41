package master

import (
	"strings"
	"time"
)

// Kind names one of the auxiliary reference tables employees point at.
type Kind string

const (
	KindDepartment  Kind = "department"
	KindDesignation Kind = "designation"
	KindOrgUnit     Kind = "org_unit"
	KindTimePolicy  Kind = "time_policy"
)

// Kinds lists every lookup kind in resolution order.
var Kinds = []Kind{KindDepartment, KindDesignation, KindOrgUnit, KindTimePolicy}

// Lookup is a reference entity identified by its natural short code.
type Lookup struct {
	ID        string
	Kind      Kind
	Code      string
	Name      string
	CreatedAt time.Time
}

// NormalizeCode trims and upper-cases a short code so "hr " and "HR" resolve together.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName returns the best-effort name for a code, falling back to the code itself.
func DisplayName(kind Kind, code string) string {
	code = NormalizeCode(code)
	if names, ok := knownNames[kind]; ok {
		if name, ok := names[code]; ok {
			return name
		}
	}
	return code
}

package employee

// ManagerAssignment grants a manager visibility over employees. Each non-nil
// field is a constraint; a row with no constraints grants nothing.
type ManagerAssignment struct {
	ID            string
	ManagerID     string
	DepartmentID  *string
	DesignationID *string
	OrgUnitID     *string
}

func (a ManagerAssignment) constrained() bool {
	return a.DepartmentID != nil || a.DesignationID != nil || a.OrgUnitID != nil
}

// Matches reports whether e satisfies every constraint of the row.
func (a ManagerAssignment) Matches(e Employee) bool {
	if !a.constrained() {
		return false
	}
	return fieldMatches(a.DepartmentID, e.DepartmentID) &&
		fieldMatches(a.DesignationID, e.DesignationID) &&
		fieldMatches(a.OrgUnitID, e.OrgUnitID)
}

func fieldMatches(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

// InManagerScope is true for the manager themself, or when at least one
// assignment row matches (AND within a row, OR across rows).
func InManagerScope(managerID string, assignments []ManagerAssignment, e Employee) bool {
	if e.ID == managerID {
		return true
	}
	for _, a := range assignments {
		if a.Matches(e) {
			return true
		}
	}
	return false
}

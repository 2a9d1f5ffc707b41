package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
)

// Decide merges the local record and the remote row of one employee for day.
// A local record always wins; the remote row is consulted only without one.
func Decide(e employee.Employee, local *attendance.Record, remote *attendance.RemoteRow, day time.Time) attendance.Decision {
	d := attendance.Decision{
		EmployeeID:   e.ID,
		CardNumber:   e.CardNumber,
		EmployeeName: e.FullName(),
		Date:         day,
		Status:       attendance.Absent,
		Source:       attendance.OriginNone,
	}

	switch {
	case local != nil:
		d.Source = attendance.OriginLocal
		if local.Status == attendance.StatusPresent || local.CheckIn != nil {
			d.Status = attendance.Present
		}
		d.CheckIn, d.CheckOut = local.CheckIn, local.CheckOut

	case remote != nil:
		d.Source = attendance.OriginRemote
		if RemotePresent(*remote) {
			d.Status = attendance.Present
		}
		d.CheckIn = attendance.ParsePunch(displayTime(remote.TIn, remote.ResultTIn), day)
		d.CheckOut = attendance.ParsePunch(displayTime(remote.TOut, remote.ResultTOut), day)
	}

	return d
}

// RemotePresent reads presence from a warehouse row: the flag, a PRESENT/P
// status, or an actual punch-in.
func RemotePresent(row attendance.RemoteRow) bool {
	if row.Present {
		return true
	}
	status := strings.ToUpper(strings.TrimSpace(row.Status))
	if status == "P" || strings.Contains(status, "PRESENT") {
		return true
	}
	return strings.TrimSpace(row.TIn) != ""
}

// displayTime prefers the actual punch over the shift default. The default
// shift start is a placeholder, never a punch.
func displayTime(actual, shiftDefault string) string {
	if actual = strings.TrimSpace(actual); actual != "" {
		return actual
	}
	shiftDefault = strings.TrimSpace(shiftDefault)
	if shiftDefault == attendance.DefaultShiftStart {
		return ""
	}
	return shiftDefault
}

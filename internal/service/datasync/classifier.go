package datasync

import "github.com/cmlabs-hris/workforce-sync-go/internal/pkg/parser"

// DataType is the classification of a parsed batch.
type DataType string

const (
	DataTypeAttendance DataType = "attendance"
	DataTypeEmployee   DataType = "employee"
	DataTypeEmpty      DataType = "empty"
)

// Attendance record fields.
const (
	FieldAttendanceCard   = "cardno"
	FieldAttendanceDate   = "dt"
	FieldAttendanceIn     = "FirstIn"
	FieldAttendanceOut    = "LastOut"
	FieldAttendanceDevice = "DeviceId"
	FieldAttendanceStatus = "Status"
)

// Employee record fields.
const (
	FieldCardNo        = "CardNo"
	FieldName          = "Name"
	FieldDeptCode      = "DeptCode"
	FieldDesgCode      = "DesgCode"
	FieldUnitCode      = "UnitCode"
	FieldPolicyCode    = "PolicyCode"
	FieldPhone         = "Phone"
	FieldPhone2        = "Phone2"
	FieldEmail         = "Email"
	FieldPersonalEmail = "PersonalEmail"
	FieldGender        = "Gender"
	FieldIDNo          = "IdNo"
	FieldPhoto         = "Photo"
	FieldStatus        = "Status"
	FieldWeeklyOff     = "WeeklyOff"
	FieldShiftStart    = "ShiftStart"
	FieldShiftEnd      = "ShiftEnd"
	FieldInterviewDate = "InterviewDate"
	FieldExitDate      = "ExitDate"
)

// AttendanceMarkers is the key set whose presence suggests an attendance batch.
var AttendanceMarkers = []string{
	FieldAttendanceIn,
	FieldAttendanceOut,
	FieldAttendanceCard,
	FieldAttendanceDate,
	FieldAttendanceDevice,
}

// EmployeeMarkers is the key set whose presence rules an attendance batch out.
var EmployeeMarkers = []string{
	FieldCardNo,
	FieldName,
	FieldDeptCode,
}

// Classify decides the type of a whole batch from its first record: attendance when
// the keys hit an attendance marker and no employee marker, employee otherwise.
func Classify(first parser.Record) DataType {
	if first == nil {
		return DataTypeEmpty
	}
	if hasAny(first, AttendanceMarkers) && !hasAny(first, EmployeeMarkers) {
		return DataTypeAttendance
	}
	return DataTypeEmployee
}

func hasAny(rec parser.Record, keys []string) bool {
	for _, k := range keys {
		if _, ok := rec[k]; ok {
			return true
		}
	}
	return false
}

// ClassifyBatch classifies records by their first element.
func ClassifyBatch(records []parser.Record) DataType {
	if len(records) == 0 {
		return DataTypeEmpty
	}
	return Classify(records[0])
}

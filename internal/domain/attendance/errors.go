package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidDaySelector = errors.New("day must be today or lastday")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrRemoteUnavailable  = errors.New("remote attendance warehouse is not configured")
)

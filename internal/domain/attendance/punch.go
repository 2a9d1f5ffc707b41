package attendance

import (
	"strings"
	"time"
)

var punchDateTimeLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2-Jan-06 15:04",
	"2-Jan-2006 15:04",
}

var punchClockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
}

var dayLayouts = []string{
	"2-Jan-06",
	"2-Jan-2006",
	"1/2/2006",
	"2006-01-02",
}

// ParseDay parses a calendar date (D-Mon-YY, M/D/YYYY or ISO) to midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePunch turns a punch string into a timestamp. A bare clock value is
// anchored to day, whose location is used for every layout.
func ParsePunch(value string, day time.Time) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	loc := day.Location()
	for _, layout := range punchDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	for _, layout := range punchClockLayouts {
		if c, err := time.Parse(layout, value); err == nil {
			t := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc)
			return &t
		}
	}
	return nil
}

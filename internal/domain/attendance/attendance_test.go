package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDaySelector(t *testing.T) {
	s, err := ParseDaySelector("")
	require.NoError(t, err)
	assert.Equal(t, SelectorToday, s)

	s, err = ParseDaySelector("lastday")
	require.NoError(t, err)
	assert.Equal(t, SelectorLastDay, s)

	_, err = ParseDaySelector("tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDaySelector)
}

func TestDaySelector_Day(t *testing.T) {
	now := time.Date(2025, 12, 5, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), SelectorToday.Day(now, time.UTC))
	assert.Equal(t, time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC), SelectorLastDay.Day(now, time.UTC))
}

func TestNewDashboardResponse_Summary(t *testing.T) {
	day := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	in := day.Add(9 * time.Hour)

	resp := NewDashboardResponse(day, true, []Decision{
		{EmployeeID: "a", Status: Present, Source: OriginLocal, CheckIn: &in},
		{EmployeeID: "b", Status: Present, Source: OriginRemote},
		{EmployeeID: "c", Status: Absent, Source: OriginNone},
	})

	assert.Equal(t, "2025-12-05", resp.Date)
	assert.Equal(t, Summary{Total: 3, Present: 2, Absent: 1, FromLocal: 1, FromRemote: 1}, resp.Summary)
	require.Len(t, resp.Employees, 3)
	assert.Equal(t, "2025-12-05 09:00:00", *resp.Employees[0].CheckIn)
	assert.Nil(t, resp.Employees[2].CheckIn)
}

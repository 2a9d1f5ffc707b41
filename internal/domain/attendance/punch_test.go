package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	want := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"5-Dec-25", "05-DEC-25", "12/5/2025", "2025-12-05", " 5-Dec-2025 "} {
		got, ok := ParseDay(in, time.UTC)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDay("someday", time.UTC)
	assert.False(t, ok)
}

func TestParsePunch_DateTime(t *testing.T) {
	day := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

	got := ParsePunch("12/5/2025 09:05", day)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 12, 5, 9, 5, 0, 0, time.UTC), *got)
}

func TestParsePunch_ClockAnchoredToDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	lastDay := time.Date(2025, 12, 4, 0, 0, 0, 0, loc)

	got := ParsePunch("18:30:15", lastDay)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 12, 4, 18, 30, 15, 0, loc), *got)

	assert.Nil(t, ParsePunch("", lastDay))
	assert.Nil(t, ParsePunch("--", lastDay))
}

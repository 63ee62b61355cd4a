package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"3/24", date(2024, time.March, 1), true},
		{"03/2024", date(2024, time.March, 1), true},
		{"12/99", date(2099, time.December, 1), true},
		{"2024-03-15", date(2024, time.March, 15), true},
		{"2024-03-15T18:30:00Z", date(2024, time.March, 15), true},
		{"2024-03-15T23:30:00-05:00", date(2024, time.March, 15), true},
		{"2024-03-15 10:00:00", date(2024, time.March, 15), true},
		{"2024-03-15T00:00:00", date(2024, time.March, 15), true},
		{"2024-03-15T00:00:00.000", date(2024, time.March, 15), true},
		{"2024-13-15T00:00:00", time.Time{}, false},
		{" 1/25 ", date(2025, time.January, 1), true},
		{"not-a-date", time.Time{}, false},
		{"", time.Time{}, false},
		{"1/2/24", time.Time{}, false},
		{"13/24", time.Time{}, false},
		{"0/24", time.Time{}, false},
		{"3/124", time.Time{}, false},
		{"ab/24", time.Time{}, false},
		{"2024-3-1", time.Time{}, false},
		{"20240315", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.True(t, tc.want.Equal(got), "input %q: got %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatAndNormalize(t *testing.T) {
	assert.Equal(t, "2024-03-01", Format(date(2024, time.March, 1)))
	assert.Equal(t, "0999-01-05", Format(date(999, time.January, 5)))
	assert.Equal(t, "2024-03-01", Normalize("3/24"))
	assert.Equal(t, "garbage", Normalize("garbage"))
}

func TestEndOfDay(t *testing.T) {
	d := date(2024, time.March, 15)
	eod := EndOfDay(d.Add(5 * time.Hour))
	assert.True(t, eod.After(d))
	assert.True(t, eod.Before(date(2024, time.March, 16)))
	assert.Equal(t, 23, eod.Hour())
	assert.Equal(t, 999*int(time.Millisecond), eod.Nanosecond())
}

package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	require.NoError(t, err)
	return parsed
}

func dayPtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed := day(t, value)
	return &parsed
}

func TestInclusionForMonthBoundaryPolicy(t *testing.T) {
	august := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		start  *time.Time
		end    *time.Time
		first  bool
		second bool
	}{
		{"short stay in first half", dayPtr(t, "2025-08-05"), dayPtr(t, "2025-08-10"), true, false},
		{"hired in second half, still employed", dayPtr(t, "2025-08-20"), nil, false, true},
		{"hired after the billing month", dayPtr(t, "2025-09-01"), nil, false, false},
		{"terminated on the 14th", dayPtr(t, "2025-07-01"), dayPtr(t, "2025-08-14"), true, false},
		{"terminated on the 16th counts as worked", dayPtr(t, "2025-07-01"), dayPtr(t, "2025-08-16"), true, true},
		{"employed the whole month", dayPtr(t, "2025-08-01"), nil, true, true},
		{"same-day hire and termination on the 15th", dayPtr(t, "2025-08-15"), dayPtr(t, "2025-08-15"), true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inclusion := InclusionForMonth(august, tc.start, tc.end)
			require.Equal(t, tc.first, inclusion.FirstWindow, "first window")
			require.Equal(t, tc.second, inclusion.SecondWindow, "second window")
		})
	}
}

func TestInclusionForMonthTerminationOnFifteenth(t *testing.T) {
	august := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	inclusion := InclusionForMonth(august, dayPtr(t, "2025-07-01"), dayPtr(t, "2025-08-15"))
	require.True(t, inclusion.FirstWindow)
	require.False(t, inclusion.SecondWindow)
}

func TestInclusionForMonthNilStart(t *testing.T) {
	august := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	inclusion := InclusionForMonth(august, nil, nil)
	require.False(t, inclusion.FirstWindow)
	require.False(t, inclusion.SecondWindow)
}

func TestOverlapsClosedIntervals(t *testing.T) {
	windows, err := WindowsForMonth(2025, time.August, time.UTC)
	require.NoError(t, err)

	// Termination exactly on the window start day still overlaps.
	require.True(t, Overlaps(day(t, "2025-07-01"), dayPtr(t, "2025-08-16"), windows[1]))
	// Termination the day before the window start does not.
	require.False(t, Overlaps(day(t, "2025-07-01"), dayPtr(t, "2025-08-15"), windows[1]))
	// Start exactly on the window end day still overlaps.
	require.True(t, Overlaps(day(t, "2025-08-15"), nil, windows[0]))
	// Open-ended employment overlaps everything from hire onward.
	require.True(t, Overlaps(day(t, "2020-01-01"), nil, windows[0]))
}

func TestOverlapsNormalisesTimestamps(t *testing.T) {
	windows, err := WindowsForMonth(2025, time.August, time.UTC)
	require.NoError(t, err)

	// A late-evening timestamp on the boundary day is still that day.
	start := time.Date(2025, time.August, 15, 23, 30, 0, 0, time.UTC)
	require.True(t, Overlaps(start, nil, windows[0]))
}

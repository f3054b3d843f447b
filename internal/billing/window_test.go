package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindowsForMonthSplitsAtFifteenth(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	windows, err := WindowsForMonth(2025, time.August, loc)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, loc), windows[0].Start)
	require.Equal(t, time.Date(2025, time.August, 15, 0, 0, 0, 0, loc), windows[0].End)
	require.Equal(t, time.Date(2025, time.August, 16, 0, 0, 0, 0, loc), windows[1].Start)
	require.Equal(t, time.Date(2025, time.August, 31, 0, 0, 0, 0, loc), windows[1].End)
}

func TestWindowsForMonthTotality(t *testing.T) {
	// Contiguous and gap-free across month lengths and a leap year.
	cases := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		windows, err := WindowsForMonth(tc.year, tc.month, time.UTC)
		require.NoError(t, err)

		require.Equal(t, 1, windows[0].Start.Day())
		require.Equal(t, 15, windows[0].End.Day())
		require.Equal(t, 16, windows[1].Start.Day())
		require.Equal(t, tc.lastDay, windows[1].End.Day(), "month %s", tc.month)

		// Second window starts exactly one day after the first ends.
		require.Equal(t, windows[0].End.AddDate(0, 0, 1), windows[1].Start)
	}
}

func TestWindowsForMonthRejectsInvalidInput(t *testing.T) {
	_, err := WindowsForMonth(2025, time.Month(13), time.UTC)
	require.Error(t, err)

	_, err = WindowsForMonth(2025, time.Month(0), time.UTC)
	require.Error(t, err)

	_, err = WindowsForMonth(1800, time.March, time.UTC)
	require.Error(t, err)
}

func TestWindowsForMonthNilLocationDefaultsUTC(t *testing.T) {
	windows, err := WindowsForMonth(2025, time.June, nil)
	require.NoError(t, err)
	require.Equal(t, time.UTC, windows[0].Start.Location())
}

package billing

import (
	"fmt"
	"time"

	"github.com/HLomotey/homa-suite-sub003/internal/shared"
)

// The half-month split at day 15/16 mirrors the payroll cycle. Any policy
// change to the window boundaries happens here and nowhere else.
const firstWindowLastDay = 15

// WindowsForMonth computes the two inclusive billing windows of a month in
// the given timezone: days 1-15 and day 16 through the last calendar day.
func WindowsForMonth(year int, month time.Month, loc *time.Location) ([2]Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	if year < 1970 || year > 9999 {
		return [2]Window{}, fmt.Errorf("billing: year %d: %w", year, shared.ErrInvalidArgument)
	}
	if month < time.January || month > time.December {
		return [2]Window{}, fmt.Errorf("billing: month %d: %w", int(month), shared.ErrInvalidArgument)
	}

	first := Window{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, firstWindowLastDay, 0, 0, 0, 0, loc),
	}
	second := Window{
		Start: time.Date(year, month, firstWindowLastDay+1, 0, 0, 0, 0, loc),
		// Day zero of the next month normalises to the last day of this one.
		End: time.Date(year, month+1, 0, 0, 0, 0, 0, loc),
	}
	return [2]Window{first, second}, nil
}

// monthBounds returns the first and last calendar day of the month.
func monthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return start, end
}

// dateOnly truncates a timestamp to its calendar day in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

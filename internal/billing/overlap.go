package billing

import "time"

// Overlaps reports whether the employment interval [start, end] intersects
// the window [w.Start, w.End]. Both intervals are closed at day granularity;
// a nil end means still employed. The termination day itself counts as a
// worked day, so a termination on day 16 still reaches the second window.
func Overlaps(start time.Time, end *time.Time, w Window) bool {
	loc := w.Start.Location()
	s := dateOnly(start, loc)
	if s.After(dateOnly(w.End, loc)) {
		return false
	}
	if end == nil {
		return true
	}
	e := dateOnly(*end, loc)
	return !e.Before(dateOnly(w.Start, loc))
}

// InclusionForMonth evaluates which of the anchor month's two windows the
// interval [start, end] touches. A nil start, or a start after the last day
// of the month, excludes both windows: the assignment has not begun within
// or before this billing month.
func InclusionForMonth(anchor time.Time, start, end *time.Time) Inclusion {
	loc := anchor.Location()
	windows, err := WindowsForMonth(anchor.Year(), anchor.Month(), loc)
	if err != nil {
		return Inclusion{}
	}
	if start == nil {
		return Inclusion{}
	}
	_, monthEnd := monthBounds(anchor.Year(), anchor.Month(), loc)
	if dateOnly(*start, loc).After(monthEnd) {
		return Inclusion{}
	}
	return Inclusion{
		FirstWindow:  Overlaps(*start, end, windows[0]),
		SecondWindow: Overlaps(*start, end, windows[1]),
	}
}

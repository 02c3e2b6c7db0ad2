package daterange

import (
	"errors"
	"time"
)

var ErrDateInPast = errors.New("daterange: date is in the past")

// Phase enumerates the shapes a selection may take at rest.
type Phase int

const (
	Empty Phase = iota
	Partial
	Complete
)

// Selection is the two-click calendar range state. Zero times mean absent;
// the only valid shapes are (none,none), (start,none) and (start,end) with
// end never before start.
type Selection struct {
	Start time.Time
	End   time.Time
}

func (s Selection) Phase() Phase {
	switch {
	case s.Start.IsZero():
		return Empty
	case s.End.IsZero():
		return Partial
	default:
		return Complete
	}
}

// Range returns the completed date range, if any.
func (s Selection) Range() (DateRange, bool) {
	if s.Phase() != Complete {
		return DateRange{}, false
	}
	return DateRange{CheckIn: s.Start.UTC(), CheckOut: s.End.UTC()}, true
}

// Select applies one calendar click to the selection and returns the next
// state plus whether the host should close the picker.
//
// From Empty or Complete a click always starts a fresh range; a completed
// range is discarded, never extended. From Partial a click at or after the
// start completes the range, an earlier click restarts it. Past dates are
// rejected here as well, in case the calendar's disabled rendering fails.
func Select(s Selection, clicked, now time.Time) (Selection, bool, error) {
	if beforeToday(clicked, now) {
		return s, false, ErrDateInPast
	}
	clicked = clicked.UTC()
	switch s.Phase() {
	case Partial:
		if !clicked.Before(s.Start) {
			return Selection{Start: s.Start, End: clicked}, true, nil
		}
		return Selection{Start: clicked}, false, nil
	default: // Empty or Complete
		return Selection{Start: clicked}, false, nil
	}
}

func beforeToday(t, now time.Time) bool {
	t, now = t.UTC(), now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}

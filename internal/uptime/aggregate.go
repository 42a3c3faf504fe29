package uptime

import "time"

// Tally is the summed business-hours uptime and downtime of one window.
// Unknown status time is in neither bucket, so Up+Down can fall short of
// the total business-hours duration only when a store has no
// observations at all.
type Tally struct {
	Up   time.Duration
	Down time.Duration
}

// Aggregate intersects the calendar's business sub-intervals with the
// timeline's status segments over win and sums true elapsed durations
// per status. Both sequences are sorted and disjoint, so a single merge
// pass suffices.
func Aggregate(cal *Calendar, tl *Timeline, win Interval) Tally {
	business := cal.Subintervals(win)
	if len(business) == 0 {
		return Tally{}
	}
	segments := tl.Segments(win)

	var t Tally
	i, j := 0, 0
	for i < len(business) && j < len(segments) {
		ov := business[i].Clip(segments[j].Span)
		if !ov.Empty() {
			switch segments[j].Status {
			case StatusUp:
				t.Up += ov.Duration()
			case StatusDown:
				t.Down += ov.Duration()
			}
		}
		// Advance whichever interval ends first.
		if business[i].End.Before(segments[j].Span.End) {
			i++
		} else if segments[j].Span.End.Before(business[i].End) {
			j++
		} else {
			i++
			j++
		}
	}
	return t
}

package uptime

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span of UTC instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Empty() bool { return !iv.Start.Before(iv.End) }

func (iv Interval) Duration() time.Duration {
	if iv.Empty() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Clip returns the intersection of iv with bounds. The result may be
// empty; callers check with Empty.
func (iv Interval) Clip(bounds Interval) Interval {
	out := iv
	if bounds.Start.After(out.Start) {
		out.Start = bounds.Start
	}
	if bounds.End.Before(out.End) {
		out.End = bounds.End
	}
	return out
}

// mergeIntervals sorts ivs ascending by start and unions overlapping or
// adjacent spans so no instant is counted twice. Empty inputs are dropped.
func mergeIntervals(ivs []Interval) []Interval {
	filtered := ivs[:0]
	for _, iv := range ivs {
		if !iv.Empty() {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})
	out := []Interval{filtered[0]}
	for _, iv := range filtered[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

package uptime

import (
	"sort"
	"time"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

// Status is the resolved state of a store at an instant.
type Status int8

const (
	// StatusUnknown marks spans with no observation to interpolate from;
	// unknown time counts toward neither uptime nor downtime.
	StatusUnknown Status = iota
	StatusUp
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

func statusOf(active bool) Status {
	if active {
		return StatusUp
	}
	return StatusDown
}

// Segment is a maximal constant-status sub-interval of a queried span.
type Segment struct {
	Status Status
	Span   Interval
}

// Timeline resolves a store's status at any instant from its sparse
// observations by step interpolation: each observation's status holds
// from its timestamp until superseded by the next.
//
// Extrapolation policy, fixed here and locked by the tests:
//   - before the first observation ever recorded, the first observation's
//     status is held backward (backfill);
//   - after the last observation, the last status is held forward;
//   - with no observations at all, every span resolves to StatusUnknown.
type Timeline struct {
	obs []domain.Observation
}

// NewTimeline copies and sorts obs by timestamp. Among observations
// sharing a timestamp the last ingested wins.
func NewTimeline(obs []domain.Observation) *Timeline {
	sorted := make([]domain.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	deduped := sorted[:0]
	for _, o := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(o.Timestamp) {
			deduped[n-1] = o
			continue
		}
		deduped = append(deduped, o)
	}
	return &Timeline{obs: deduped}
}

// StatusAt resolves the store's status at instant t.
func (tl *Timeline) StatusAt(t time.Time) Status {
	if len(tl.obs) == 0 {
		return StatusUnknown
	}
	// Last observation at or before t; backfill from the first otherwise.
	i := sort.Search(len(tl.obs), func(i int) bool {
		return tl.obs[i].Timestamp.After(t)
	})
	if i == 0 {
		return statusOf(tl.obs[0].Active)
	}
	return statusOf(tl.obs[i-1].Active)
}

// Segments partitions win into maximal constant-status sub-intervals.
// The result always covers win exactly; observations outside win only
// influence the boundary statuses, they never appear as segments.
func (tl *Timeline) Segments(win Interval) []Segment {
	if win.Empty() {
		return nil
	}
	if len(tl.obs) == 0 {
		return []Segment{{Status: StatusUnknown, Span: win}}
	}

	cur := tl.StatusAt(win.Start)
	segStart := win.Start
	var out []Segment

	// First observation strictly inside the window.
	i := sort.Search(len(tl.obs), func(i int) bool {
		return tl.obs[i].Timestamp.After(win.Start)
	})
	for ; i < len(tl.obs) && tl.obs[i].Timestamp.Before(win.End); i++ {
		next := statusOf(tl.obs[i].Active)
		if next == cur {
			continue
		}
		out = append(out, Segment{Status: cur, Span: Interval{Start: segStart, End: tl.obs[i].Timestamp}})
		cur = next
		segStart = tl.obs[i].Timestamp
	}
	return append(out, Segment{Status: cur, Span: Interval{Start: segStart, End: win.End}})
}

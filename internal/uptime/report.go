package uptime

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

// FallbackTimezone is used for stores with no timezone row and for
// stores whose configured zone name does not resolve.
const FallbackTimezone = "America/Chicago"

// Input is everything a report run needs, pre-loaded and immutable.
// Now is the global reference instant (max observation timestamp across
// the dataset); the core never reads a wall clock.
type Input struct {
	Now          time.Time
	Stores       []string // optional; derived from Observations when nil
	Observations map[string][]domain.Observation
	Rules        map[string][]domain.BusinessHoursRule
	Timezones    map[string]string
	DefaultTZ    string // optional override of FallbackTimezone
	Workers      int    // concurrent stores; <=0 means sequential
}

// ComputeReport produces one metrics row per store, ordered by store id:
// uptime/downtime over the trailing hour (minutes), day and week (hours),
// all ending at in.Now. Stores are independent and processed on a bounded
// worker pool; a store with bad inputs degrades to a zero row with a
// reason instead of failing the report.
func ComputeReport(ctx context.Context, in Input) ([]domain.StoreMetrics, error) {
	ids := in.Stores
	if ids == nil {
		ids = make([]string, 0, len(in.Observations))
		for id := range in.Observations {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]domain.StoreMetrics, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	workers := in.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = storeMetrics(in, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func storeMetrics(in Input, id string) (row domain.StoreMetrics) {
	row.StoreID = id
	defer func() {
		// A malformed store must never take down the whole report.
		if r := recover(); r != nil {
			row = domain.StoreMetrics{StoreID: id, Degraded: fmt.Sprintf("aggregation panic: %v", r)}
		}
	}()

	loc, degraded := resolveLocation(in, id)
	row.Degraded = degraded

	cal := NewCalendar(loc, in.Rules[id])
	tl := NewTimeline(in.Observations[id])

	hour := Aggregate(cal, tl, Interval{Start: in.Now.Add(-time.Hour), End: in.Now})
	day := Aggregate(cal, tl, Interval{Start: in.Now.Add(-24 * time.Hour), End: in.Now})
	week := Aggregate(cal, tl, Interval{Start: in.Now.Add(-7 * 24 * time.Hour), End: in.Now})

	row.UptimeLastHour = round2(hour.Up.Minutes())
	row.DowntimeLastHour = round2(hour.Down.Minutes())
	row.UptimeLastDay = round2(day.Up.Hours())
	row.DowntimeLastDay = round2(day.Down.Hours())
	row.UptimeLastWeek = round2(week.Up.Hours())
	row.DowntimeLastWeek = round2(week.Down.Hours())
	return row
}

func resolveLocation(in Input, id string) (*time.Location, string) {
	fallback := in.DefaultTZ
	if fallback == "" {
		fallback = FallbackTimezone
	}
	name, ok := in.Timezones[id]
	if !ok || name == "" {
		name = fallback
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, ""
	}
	degraded := fmt.Sprintf("invalid timezone %q, using %s", name, fallback)
	if loc, err = time.LoadLocation(fallback); err == nil {
		return loc, degraded
	}
	return time.UTC, degraded
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

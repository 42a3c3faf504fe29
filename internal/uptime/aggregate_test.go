package uptime

import (
	"testing"
	"time"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

// Active at t0, inactive at t0+30m, business hours 09:00-22:00 in UTC,
// window = the hour ending at t0+1h: exactly half up, half down.
func TestAggregateHalfUpHalfDown(t *testing.T) {
	t0 := utc(2023, time.January, 25, 12, 0) // Wednesday, well inside 09-22
	cal := NewCalendar(time.UTC, []domain.BusinessHoursRule{
		{Day: time.Wednesday, StartLocal: domain.ClockOf(9, 0, 0), EndLocal: domain.ClockOf(22, 0, 0)},
	})
	tl := NewTimeline([]domain.Observation{
		obs(t0, true),
		obs(t0.Add(30*time.Minute), false),
	})
	got := Aggregate(cal, tl, Interval{Start: t0, End: t0.Add(time.Hour)})
	if got.Up != 30*time.Minute || got.Down != 30*time.Minute {
		t.Fatalf("got up=%v down=%v, want 30m/30m", got.Up, got.Down)
	}
}

func TestAggregateExcludesOutsideBusinessHours(t *testing.T) {
	// Open 09:00-10:00 only; store up all day. Only the open hour counts.
	cal := NewCalendar(time.UTC, []domain.BusinessHoursRule{
		{Day: time.Wednesday, StartLocal: domain.ClockOf(9, 0, 0), EndLocal: domain.ClockOf(10, 0, 0)},
	})
	tl := NewTimeline([]domain.Observation{obs(utc(2023, time.January, 25, 0, 0), true)})
	win := Interval{Start: utc(2023, time.January, 25, 0, 0), End: utc(2023, time.January, 26, 0, 0)}
	got := Aggregate(cal, tl, win)
	if got.Up != time.Hour || got.Down != 0 {
		t.Fatalf("got up=%v down=%v, want 1h/0", got.Up, got.Down)
	}
}

func TestAggregateZeroBusinessOverlap(t *testing.T) {
	cal := NewCalendar(time.UTC, []domain.BusinessHoursRule{
		{Day: time.Monday, StartLocal: domain.ClockOf(9, 0, 0), EndLocal: domain.ClockOf(17, 0, 0)},
	})
	tl := NewTimeline([]domain.Observation{obs(utc(2023, time.January, 25, 0, 0), true)})
	// Wednesday window; the store only opens Mondays.
	win := Interval{Start: utc(2023, time.January, 25, 0, 0), End: utc(2023, time.January, 26, 0, 0)}
	if got := Aggregate(cal, tl, win); got.Up != 0 || got.Down != 0 {
		t.Fatalf("got %+v, want zero tally", got)
	}
}

func TestAggregateUnknownCountsNowhere(t *testing.T) {
	cal := NewCalendar(time.UTC, nil)
	tl := NewTimeline(nil)
	win := Interval{Start: utc(2023, time.January, 25, 12, 0), End: utc(2023, time.January, 25, 13, 0)}
	if got := Aggregate(cal, tl, win); got.Up != 0 || got.Down != 0 {
		t.Fatalf("no observations: got %+v, want zero tally", got)
	}
}

// Up+Down must equal the summed business durations exactly whenever the
// store has any observation, for arbitrary rule/observation mixes.
func TestAggregateConservation(t *testing.T) {
	cases := []struct {
		name  string
		rules []domain.BusinessHoursRule
		obs   []domain.Observation
	}{
		{
			name: "always open, flapping store",
			obs: []domain.Observation{
				obs(utc(2023, time.January, 25, 1, 17), true),
				obs(utc(2023, time.January, 25, 4, 2), false),
				obs(utc(2023, time.January, 25, 9, 45), true),
				obs(utc(2023, time.January, 25, 21, 13), false),
			},
		},
		{
			name: "split shifts",
			rules: []domain.BusinessHoursRule{
				{Day: time.Wednesday, StartLocal: domain.ClockOf(8, 0, 0), EndLocal: domain.ClockOf(12, 0, 0)},
				{Day: time.Wednesday, StartLocal: domain.ClockOf(14, 30, 0), EndLocal: domain.ClockOf(23, 15, 0)},
			},
			obs: []domain.Observation{
				obs(utc(2023, time.January, 25, 7, 59), false),
				obs(utc(2023, time.January, 25, 11, 30), true),
			},
		},
		{
			name: "overnight shift",
			rules: []domain.BusinessHoursRule{
				{Day: time.Tuesday, StartLocal: domain.ClockOf(22, 0, 0), EndLocal: domain.ClockOf(6, 0, 0)},
				{Day: time.Wednesday, StartLocal: domain.ClockOf(22, 0, 0), EndLocal: domain.ClockOf(6, 0, 0)},
			},
			obs: []domain.Observation{
				obs(utc(2023, time.January, 25, 2, 0), true),
				obs(utc(2023, time.January, 25, 23, 30), false),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cal := NewCalendar(time.UTC, tc.rules)
			tl := NewTimeline(tc.obs)
			win := Interval{Start: utc(2023, time.January, 25, 0, 0), End: utc(2023, time.January, 26, 0, 0)}

			var business time.Duration
			for _, iv := range cal.Subintervals(win) {
				business += iv.Duration()
			}
			got := Aggregate(cal, tl, win)
			if got.Up+got.Down != business {
				t.Fatalf("up %v + down %v = %v, want business total %v",
					got.Up, got.Down, got.Up+got.Down, business)
			}
			if got.Up < 0 || got.Down < 0 || got.Up+got.Down > win.Duration() {
				t.Fatalf("tally out of bounds: %+v over %v", got, win.Duration())
			}
		})
	}
}

func TestAggregateDSTUsesElapsedTime(t *testing.T) {
	chicago := mustLoc(t, "America/Chicago")
	cal := NewCalendar(chicago, []domain.BusinessHoursRule{
		{Day: time.Sunday, StartLocal: domain.ClockOf(1, 0, 0), EndLocal: domain.ClockOf(14, 0, 0)},
	})
	// Store up the whole spring-forward day.
	tl := NewTimeline([]domain.Observation{obs(utc(2023, time.March, 11, 0, 0), true)})
	win := Interval{Start: utc(2023, time.March, 12, 0, 0), End: utc(2023, time.March, 13, 0, 0)}
	got := Aggregate(cal, tl, win)
	if got.Up != 12*time.Hour || got.Down != 0 {
		t.Fatalf("spring forward: got up=%v down=%v, want 12h/0", got.Up, got.Down)
	}
}

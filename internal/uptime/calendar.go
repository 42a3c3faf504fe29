package uptime

import (
	"time"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

// Calendar answers which portions of a UTC window fall inside a store's
// weekly business hours. A store with no rules is open 24/7.
//
// Rules are anchored to local wall-clock times with time.Date in the
// store's zone, so a window that crosses a DST transition yields true
// elapsed UTC durations rather than nominal local ones. A rule whose end
// precedes its start crosses midnight and extends into the following
// local day; zero-length rules are dropped at construction.
type Calendar struct {
	loc   *time.Location
	rules map[time.Weekday][]domain.BusinessHoursRule
}

func NewCalendar(loc *time.Location, rules []domain.BusinessHoursRule) *Calendar {
	c := &Calendar{loc: loc}
	for _, r := range rules {
		if r.StartLocal == r.EndLocal {
			continue
		}
		if c.rules == nil {
			c.rules = make(map[time.Weekday][]domain.BusinessHoursRule)
		}
		c.rules[r.Day] = append(c.rules[r.Day], r)
	}
	return c
}

// Open247 reports whether the store has no usable business-hours rules.
func (c *Calendar) Open247() bool { return len(c.rules) == 0 }

// Subintervals returns the disjoint, ascending business sub-intervals of
// win. With no rules the window itself is returned unchanged.
func (c *Calendar) Subintervals(win Interval) []Interval {
	if win.Empty() {
		return nil
	}
	if c.Open247() {
		return []Interval{win}
	}

	// Walk local calendar days, starting one day early so an overnight
	// rule from the previous day still contributes its spill-over.
	startLocal := win.Start.In(c.loc)
	endLocal := win.End.In(c.loc)
	y, m, d := startLocal.Date()
	cursor := time.Date(y, m, d-1, 0, 0, 0, 0, c.loc)

	var candidates []Interval
	for !cursor.After(endLocal) {
		cy, cm, cd := cursor.Date()
		for _, r := range c.rules[cursor.Weekday()] {
			opens := time.Date(cy, cm, cd, 0, 0, int(r.StartLocal), 0, c.loc)
			var closes time.Time
			if r.EndLocal > r.StartLocal {
				closes = time.Date(cy, cm, cd, 0, 0, int(r.EndLocal), 0, c.loc)
			} else {
				closes = time.Date(cy, cm, cd+1, 0, 0, int(r.EndLocal), 0, c.loc)
			}
			iv := Interval{Start: opens.UTC(), End: closes.UTC()}.Clip(win)
			if !iv.Empty() {
				candidates = append(candidates, iv)
			}
		}
		cursor = time.Date(cy, cm, cd+1, 0, 0, 0, 0, c.loc)
	}
	return mergeIntervals(candidates)
}

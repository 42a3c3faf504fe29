package domain

import (
	"fmt"
	"time"
)

// Observation is a single active/inactive reading for one store,
// timestamped in UTC. Immutable once ingested.
type Observation struct {
	StoreID   string    `db:"store_id" json:"store_id"`
	Timestamp time.Time `db:"timestamp_utc" json:"timestamp_utc"`
	Active    bool      `db:"active" json:"active"`
}

// Clock is a time of day expressed as seconds since local midnight.
type Clock int

// ClockOf builds a Clock from hour/minute/second components.
func ClockOf(h, m, s int) Clock { return Clock(h*3600 + m*60 + s) }

func (c Clock) Hour() int   { return int(c) / 3600 }
func (c Clock) Minute() int { return int(c) % 3600 / 60 }
func (c Clock) Second() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// BusinessHoursRule is one weekly open window for a store in its local
// timezone. StartLocal > EndLocal means the window crosses midnight into
// the following day.
type BusinessHoursRule struct {
	StoreID    string       `db:"store_id"`
	Day        time.Weekday `db:"day_of_week"`
	StartLocal Clock        `db:"start_seconds"`
	EndLocal   Clock        `db:"end_seconds"`
}

// StoreTimezone maps a store to its IANA timezone name.
type StoreTimezone struct {
	StoreID string `db:"store_id" json:"store_id"`
	TZ      string `db:"timezone_str" json:"timezone_str"`
}

// Report lifecycle states.
const (
	ReportRunning  = "Running"
	ReportComplete = "Complete"
	ReportFailed   = "Failed"
)

// Report tracks one report-generation request from trigger to download.
type Report struct {
	ID        int64     `db:"id" json:"-"`
	ReportID  string    `db:"report_id" json:"report_id"`
	Status    string    `db:"status" json:"status"`
	Path      string    `db:"report_path" json:"report_path,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoreMetrics is one report row: uptime/downtime per trailing window.
// The last-hour pair is in minutes, last-day and last-week in hours;
// Degraded carries a reason when the store fell back to defaults
// (e.g. an unrecognized timezone).
type StoreMetrics struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
	Degraded         string  `json:"degraded,omitempty"`
}

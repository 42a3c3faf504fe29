// Package loader parses the three report input CSVs (store status,
// business hours, timezones) into validated domain values. All parsing
// tolerance lives here; rows that fail to parse are logged and skipped
// so one bad line never aborts a load.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

// Observed CSV timestamp shapes, e.g. "2023-01-25 12:05:19.846849 UTC".
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999 UTC",
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"03:04:05 PM",
	"03:04 PM",
}

// ParseTimestamp parses a UTC timestamp in any of the supported shapes.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ParseClock parses a local time of day.
func ParseClock(s string) (domain.Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.ClockOf(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("unparseable time of day %q", s)
}

// ParseStatus maps the CSV status column to an active flag.
func ParseStatus(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return true, nil
	case "inactive":
		return false, nil
	}
	return false, fmt.Errorf("unknown status %q", s)
}

// ParseDayOfWeek converts the CSV day convention (0=Monday..6=Sunday)
// to time.Weekday.
func ParseDayOfWeek(s string) (time.Weekday, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 6 {
		return 0, fmt.Errorf("day of week %q out of range", s)
	}
	return time.Weekday((n + 1) % 7), nil
}

// StoreStatus reads store_status.csv rows
// (store_id, timestamp_utc, status).
func StoreStatus(path string) ([]domain.Observation, error) {
	var out []domain.Observation
	err := eachRow(path, []string{"store_id", "timestamp_utc", "status"}, func(get func(string) string) error {
		ts, err := ParseTimestamp(get("timestamp_utc"))
		if err != nil {
			return err
		}
		active, err := ParseStatus(get("status"))
		if err != nil {
			return err
		}
		out = append(out, domain.Observation{
			StoreID:   get("store_id"),
			Timestamp: ts,
			Active:    active,
		})
		return nil
	})
	return out, err
}

// BusinessHours reads menu_hours.csv rows
// (store_id, dayOfWeek, start_time_local, end_time_local).
func BusinessHours(path string) ([]domain.BusinessHoursRule, error) {
	var out []domain.BusinessHoursRule
	err := eachRow(path, []string{"store_id", "dayOfWeek", "start_time_local", "end_time_local"}, func(get func(string) string) error {
		day, err := ParseDayOfWeek(get("dayOfWeek"))
		if err != nil {
			return err
		}
		start, err := ParseClock(get("start_time_local"))
		if err != nil {
			return err
		}
		end, err := ParseClock(get("end_time_local"))
		if err != nil {
			return err
		}
		out = append(out, domain.BusinessHoursRule{
			StoreID:    get("store_id"),
			Day:        day,
			StartLocal: start,
			EndLocal:   end,
		})
		return nil
	})
	return out, err
}

// Timezones reads timezones.csv rows (store_id, timezone_str).
func Timezones(path string) ([]domain.StoreTimezone, error) {
	var out []domain.StoreTimezone
	err := eachRow(path, []string{"store_id", "timezone_str"}, func(get func(string) string) error {
		tz := strings.TrimSpace(get("timezone_str"))
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("unknown timezone %q", tz)
		}
		out = append(out, domain.StoreTimezone{StoreID: get("store_id"), TZ: tz})
		return nil
	})
	return out, err
}

// eachRow streams a headered CSV, invoking fn per row with a
// column-name accessor. Row-level failures are logged and skipped.
func eachRow(path string, required []string, fn func(get func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return fmt.Errorf("%s: missing column %q", path, col)
		}
	}

	line := 1
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Str("file", path).Int("line", line).Msg("skipping malformed csv row")
			skipped++
			continue
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}
		if err := fn(get); err != nil {
			log.Warn().Err(err).Str("file", path).Int("line", line).Msg("skipping invalid row")
			skipped++
		}
	}
	if skipped > 0 {
		log.Info().Str("file", path).Int("skipped", skipped).Msg("load finished with skipped rows")
	}
	return nil
}

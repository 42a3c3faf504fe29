package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
)

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2023, time.January, 25, 12, 5, 19, 0, time.UTC)
	cases := []string{
		"2023-01-25 12:05:19 UTC",
		"2023-01-25 12:05:19",
		"2023-01-25T12:05:19Z",
		"2023-01-25T12:05:19",
	}
	for _, s := range cases {
		got, err := ParseTimestamp(s)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", s, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}

	withFrac, err := ParseTimestamp("2023-01-25 12:05:19.846849 UTC")
	if err != nil {
		t.Fatalf("fractional timestamp: %v", err)
	}
	if withFrac.Nanosecond() != 846849000 {
		t.Fatalf("fractional seconds lost: %v", withFrac)
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatal("expected error for garbage timestamp")
	}
}

func TestParseClockFormats(t *testing.T) {
	cases := []struct {
		in   string
		want domain.Clock
	}{
		{"09:00:00", domain.ClockOf(9, 0, 0)},
		{"09:00", domain.ClockOf(9, 0, 0)},
		{"11:30:45", domain.ClockOf(11, 30, 45)},
		{"09:00 PM", domain.ClockOf(21, 0, 0)},
		{"12:15:00 AM", domain.ClockOf(0, 15, 0)},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseClock(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}

func TestParseDayOfWeekMapsMondayBasedToWeekday(t *testing.T) {
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"0", time.Monday},
		{"4", time.Friday},
		{"6", time.Sunday},
	}
	for _, tc := range cases {
		got, err := ParseDayOfWeek(tc.in)
		if err != nil {
			t.Fatalf("ParseDayOfWeek(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDayOfWeek(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseDayOfWeek("7"); err == nil {
		t.Fatal("expected error for day 7")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestStoreStatusSkipsBadRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "store_status.csv",
		"store_id,timestamp_utc,status\n"+
			"s1,2023-01-25 12:05:19 UTC,active\n"+
			"s1,not-a-timestamp,active\n"+
			"s2,2023-01-25 12:06:00 UTC,sleeping\n"+
			"s2,2023-01-25 12:07:00 UTC,inactive\n")

	got, err := StoreStatus(path)
	if err != nil {
		t.Fatalf("StoreStatus: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d observations, want 2 (bad rows skipped): %v", len(got), got)
	}
	if !got[0].Active || got[1].Active {
		t.Fatalf("statuses mixed up: %v", got)
	}
}

func TestStoreStatusMissingColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "store_status.csv",
		"store_id,when,status\ns1,2023-01-25 12:05:19 UTC,active\n")
	if _, err := StoreStatus(path); err == nil {
		t.Fatal("expected error for missing timestamp_utc column")
	}
}

func TestBusinessHoursLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "menu_hours.csv",
		"store_id,dayOfWeek,start_time_local,end_time_local\n"+
			"s1,0,09:00:00,22:00:00\n"+
			"s1,6,10:00:00,02:00:00\n")

	got, err := BusinessHours(path)
	if err != nil {
		t.Fatalf("BusinessHours: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rules, want 2", len(got))
	}
	if got[0].Day != time.Monday || got[1].Day != time.Sunday {
		t.Fatalf("day mapping wrong: %v, %v", got[0].Day, got[1].Day)
	}
	if got[1].StartLocal <= got[1].EndLocal {
		t.Fatalf("cross-midnight rule should keep start > end: %v-%v", got[1].StartLocal, got[1].EndLocal)
	}
}

func TestTimezonesRejectsUnknownZones(t *testing.T) {
	path := writeFile(t, t.TempDir(), "timezones.csv",
		"store_id,timezone_str\n"+
			"s1,America/Chicago\n"+
			"s2,Mars/OlympusMons\n")

	got, err := Timezones(path)
	if err != nil {
		t.Fatalf("Timezones: %v", err)
	}
	if len(got) != 1 || got[0].TZ != "America/Chicago" {
		t.Fatalf("unknown zone should be skipped, got %v", got)
	}
}

// Package timeutil holds the timezone-aware parsing and formatting helpers
// used by the command surface. Giveaway times are entered and displayed in a
// configured local zone but always stored in UTC.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const inputLayout = "2006-01-02 03:04 PM"

// Zone loads the display timezone, falling back to UTC if the name is
// unknown on the host.
func Zone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseLocal parses "YYYY-MM-DD HH:MM AM/PM" in the given zone and returns
// the instant in UTC.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	t, err := time.ParseInLocation(inputLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected YYYY-MM-DD HH:MM AM/PM", s)
	}
	return t.UTC(), nil
}

// FormatLocal renders a UTC instant in the given zone using the same layout
// accepted by ParseLocal.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(inputLayout)
}

// Until returns a compact human description of the time left until end,
// "Ended" once the instant has passed.
func Until(now, end time.Time) string {
	if !end.After(now) {
		return "Ended"
	}
	return CompactDuration(end.Sub(now))
}

// CompactDuration renders a duration as "2d 3h 15m" style text. Seconds only
// show up under a minute.
func CompactDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		if seconds > 0 {
			return fmt.Sprintf("%ds", seconds)
		}
		return "less than a minute"
	}
	return strings.Join(parts, " ")
}

// Package timefmt converts between absolute instants and a viewer's
// display timezone. Every instant crossing the API boundary goes through
// ParseInstant and FormatInstant.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// Display patterns, expressed as Go layouts.
const (
	PatternSlot       = "Jan 2, 3:04 PM"
	PatternDay        = "Monday, January 2 2006"
	PatternClock      = "3:04:05 PM"
	PatternTime       = "3:04 PM"
	PatternMonth      = "Jan"
	PatternDayOfMonth = "02"
	PatternFull       = "Mon Jan 2 2006, 3:04 PM MST"
)

// Zoned is an instant projected into a timezone.
type Zoned struct {
	Date Date
	Time ClockTime
}

// Location resolves a timezone name. Empty or unknown names resolve to UTC.
func Location(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidateZone reports whether name is a zone known to the zone database.
func ValidateZone(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("timezone cannot be empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return nil
}

// ZoneName returns the display form of a timezone name.
func ZoneName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "UTC"
	}
	return strings.ReplaceAll(name, "_", " ")
}

// ToZoned projects instant into tz.
func ToZoned(instant time.Time, tz string) Zoned {
	local := instant.In(Location(tz))
	return Zoned{Date: DateOf(local), Time: ClockOf(local)}
}

// Format renders instant in tz using a Go layout.
func Format(instant time.Time, tz, pattern string) string {
	return instant.In(Location(tz)).Format(pattern)
}

// FromZoned converts a wall-clock date and time in tz to an instant in UTC.
// Times that fall in a DST gap or overlap resolve the way time.Date
// normalizes them.
func FromZoned(d Date, c ClockTime, tz string) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, Location(tz)).UTC()
}

// DayBounds returns the UTC instants delimiting date d in tz.
func DayBounds(d Date, tz string) (time.Time, time.Time) {
	loc := Location(tz)
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

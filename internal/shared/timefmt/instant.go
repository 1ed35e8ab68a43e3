package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// Offset-less layouts; the server emits naive UTC timestamps.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseInstant parses an ISO-8601 instant. Values without an offset are
// treated as UTC. The result is always in UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty instant")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid instant %q", value)
}

// FormatInstant renders t as an RFC 3339 UTC string with a Z suffix.
// Fractional seconds are kept, so ParseInstant returns the same instant.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatZonedISO renders t as RFC 3339 with the offset of tz. The string
// still names the same instant.
func FormatZonedISO(t time.Time, tz string) string {
	return t.In(Location(tz)).Format(time.RFC3339)
}

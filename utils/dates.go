package utils

import (
	"fmt"
	"regexp"
	"time"
)

// Activities store dates as yyyy-mm-dd. Older documents were written as
// dd-mm-yyyy, so reads normalize before parsing.
var legacyDatePattern = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// HistoricalGracePeriod is how long after its start an activity still counts
// as current (a meetup is assumed to run about two hours).
const HistoricalGracePeriod = 2 * time.Hour

// NormalizeDateFormat converts a legacy dd-mm-yyyy date to yyyy-mm-dd.
// ISO input is returned untouched, so the function is idempotent.
func NormalizeDateFormat(date string) string {
	if isoDatePattern.MatchString(date) {
		return date
	}
	if m := legacyDatePattern.FindStringSubmatch(date); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
	}
	return date
}

// ParseActivityStart combines a normalized date and an HH:MM time into the
// activity's scheduled start
func ParseActivityStart(date, timeOfDay string) (time.Time, error) {
	normalized := NormalizeDateFormat(date)
	start, err := time.Parse("2006-01-02 15:04", normalized+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse activity start %q %q: %w", date, timeOfDay, err)
	}
	return start, nil
}

// IsHistorical reports whether an activity's scheduled end (start + 2h) is
// before now. Unparseable dates are treated as current so they stay visible.
func IsHistorical(date, timeOfDay string, now time.Time) bool {
	start, err := ParseActivityStart(date, timeOfDay)
	if err != nil {
		return false
	}
	return now.After(start.Add(HistoricalGracePeriod))
}

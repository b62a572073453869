package services

import (
	"fmt"
	"time"
)

// nowFunc is the clock used by services; tests replace it
var nowFunc = time.Now

// ParseDate parses a date string in typical formats (YYYY-MM-DD).
// Dates are interpreted in server-local time.
func ParseDate(dateStr string) (time.Time, error) {
	// Primary format: ISO 8601 (standard for HTML5 date inputs)
	layout := "2006-01-02"

	parsedTime, err := time.ParseInLocation(layout, dateStr, time.Local)
	if err == nil {
		return parsedTime, nil
	}

	// Full timestamps as sent by JSON clients
	parsedTime, err = time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date format: expected YYYY-MM-DD", ErrValidation)
	}
	return parsedTime, nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the day containing t
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// YearBounds returns the half-open interval [Jan 1 year, Jan 1 year+1) in loc
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}

// AddBusinessDays moves days working days (Monday to Friday) forward from t
func AddBusinessDays(t time.Time, days int) time.Time {
	for days > 0 {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			days--
		}
	}
	return t
}

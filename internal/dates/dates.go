// Package dates provides calendar-day helpers for transaction records.
// All records carry day granularity only; times of day exist solely to
// bound exchange queries.
package dates

import (
	"time"

	"github.com/pkg/errors"
)

// InputFormat is the MM/DD/YYYY layout used by reward export files.
const InputFormat = "01/02/2006"

// Parse converts an MM/DD/YYYY string into a UTC time at midnight.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(InputFormat, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q, expected MM/DD/YYYY", s)
	}
	return t, nil
}

// Format renders a time as MM/DD/YYYY.
func Format(t time.Time) string {
	return t.Format(InputFormat)
}

// Day truncates a time to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the first and last instant of the calendar day containing d.
func DayBounds(d time.Time) (start, end time.Time) {
	start = Day(d)
	end = start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// Midday returns the midpoint of the trading day (day start + 12h). Fiat
// conversion rates are keyed here so a rate from the wrong side of a date
// boundary is never picked up.
func Midday(d time.Time) time.Time {
	return Day(d).Add(12 * time.Hour)
}

// Range returns every calendar day from start to end inclusive.
func Range(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start)/(24*time.Hour))+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// FromMilli converts a millisecond unix timestamp to a UTC time.
func FromMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Package calendar implements working-day calendar arithmetic: which dates
// are available for scheduling work, and how to step forward or backward by
// a count of available days.
package calendar

import (
	"fmt"
	"time"
)

// Date is a calendar day with no time-of-day component, represented as a
// signed day offset from the Unix epoch (1970-01-01 UTC).
type Date int32

const dateLayout = "2006-01-02"

// NewDate builds a Date from a calendar year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime truncates t to a UTC calendar day and returns the corresponding Date.
func FromTime(t time.Time) Date {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Date(midnight.Unix() / 86400)
}

// Time returns the UTC midnight time.Time for d.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// Weekday returns the day of week for d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date(int32(d) + int32(n))
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d < o }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d > o }

// String renders d as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string into the date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("calendar: invalid date literal %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func weekdayAbbrev(w time.Weekday) string {
	return w.String()[:3]
}

func parseWeekdayAbbrev(s string) (time.Weekday, error) {
	for w := time.Sunday; w <= time.Saturday; w++ {
		if weekdayAbbrev(w) == s {
			return w, nil
		}
	}
	return 0, fmt.Errorf("calendar: invalid weekday abbreviation %q", s)
}

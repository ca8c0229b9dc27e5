package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical textual form of a Day.
const DateLayout = "2006-01-02"

// Represents a calendar day as the number of days since 1970-01-01 (UTC).
// Days are comparable, hashable and free of time-of-day or zone concerns,
// which keeps TimeNode usable as a map key.
type Day int32

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Day(u.Unix() / 86400)
}

// NewDay builds a Day from a year, month and day of month.
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t), nil
}

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Day) AddDays(n int) Day { return d + Day(n) }

func (d Day) String() string { return d.Time().Format(DateLayout) }

// MarshalText encodes the day as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	v, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

package domain

import (
	"fmt"
	"time"
)

// dateLayout is the wire format of the GSOD date column.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day or zone component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates a time.Time to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// DateFromDaysSinceEpoch converts a Parquet DATE value (days since
// 1970-01-01) back into a Date.
func DateFromDaysSinceEpoch(days int32) Date {
	return DateOf(time.Unix(int64(days)*86400, 0))
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysSinceEpoch returns the day count since 1970-01-01, the physical
// representation of the Parquet DATE logical type.
func (d Date) DaysSinceEpoch() int32 {
	return int32(d.Time().Unix() / 86400)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

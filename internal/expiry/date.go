package expiry

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date is a validated calendar date with no time-of-day or zone.
// The zero value is Unparseable.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Unparseable is returned by Parse when no rule produced a valid date.
var Unparseable = Date{}

// NewDate builds a Date, rejecting combinations that don't exist on the
// Gregorian calendar (e.g. 31 April). Nothing is clamped.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	if year < 1 || year > 9999 || month < time.January || month > time.December || day < 1 {
		return Unparseable, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Unparseable, false
	}

	return Date{Year: year, Month: month, Day: day}, true
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseISO reads a YYYY-MM-DD string as stored by the item store.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Unparseable, fmt.Errorf("parse iso date %q: %w", s, err)
	}

	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Unparseable
}

// String renders the date as YYYY-MM-DD, or "" for Unparseable.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return DaysBetween(d, o) < 0
}

// DaysBetween returns the number of calendar days from asOf to d.
// Negative when d is before asOf.
func DaysBetween(d, asOf Date) int {
	const secondsPerDay = 24 * 60 * 60

	return int((d.Time(time.UTC).Unix() - asOf.Time(time.UTC).Unix()) / secondsPerDay)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Unparseable
		return nil
	}

	parsed, err := ParseISO(string(b))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Value stores the date as an ISO string so both SQL dialects sort it correctly.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Unparseable
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = DateOf(v)
		return nil
	}

	return fmt.Errorf("scan date: unsupported type %T", src)
}

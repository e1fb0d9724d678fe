/*
Package calendar provides date arithmetic for assignment accounting.

PURPOSE:
  Every subsystem walks calendar days: the day accountant classifies them,
  the expense aggregator buckets them by month, and the capacity scheduler
  groups them into ISO-8601 weeks. This package owns the shared Date value
  type and the week/holiday arithmetic they all depend on.

KEY CONCEPTS:
  - Date:     A day-granularity point in time (no clock component)
  - Period:   An inclusive date range, iterable day by day
  - YearWeek: An ISO-8601 (year, week) pair

DESIGN PRINCIPLES:
  1. Dates are values: comparable, usable as map keys, UTC-normalized
  2. Ranges are inclusive on both ends (matching the legal framework:
     an assignment from Sep 8 until Oct 3 spans both days)
  3. No internal state; everything here is a pure function

SEE ALSO:
  - isoweek.go:  ISO-8601 week numbering
  - holidays.go: Swiss public holiday generation
*/
package calendar

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity point in time
// =============================================================================

// Date is a calendar day. The zero value is "no date" (check with IsZero).
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its calendar day.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

// IsWeekend reports whether the day is a Saturday or a Sunday.
func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string {
	return d.t.Format("2006-01-02")
}

// DaysBetween returns the signed number of days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MondayOf returns the Monday of the week containing the given day.
func MondayOf(d Date) Date {
	// time.Weekday has Sunday == 0; ISO weeks start on Monday.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive range of days [From, Until].
type Period struct {
	From  Date
	Until Date
}

// Contains reports whether the day falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.From) && d.BeforeOrEqual(p.Until)
}

// Len returns the number of days in the period, zero if inverted.
func (p Period) Len() int {
	if p.Until.Before(p.From) {
		return 0
	}
	return DaysBetween(p.From, p.Until) + 1
}

// Overlaps reports whether two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.From.BeforeOrEqual(other.Until) && other.From.BeforeOrEqual(p.Until)
}

// Each calls fn for every day of the period in order. The iteration is
// finite and can be restarted any number of times.
func (p Period) Each(fn func(Date)) {
	for day := p.From; day.BeforeOrEqual(p.Until); day = day.AddDays(1) {
		fn(day)
	}
}

// Days returns all days of the period as a slice.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	p.Each(func(d Date) { days = append(days, d) })
	return days
}

func (p Period) String() string {
	return "[" + p.From.String() + ", " + p.Until.String() + "]"
}

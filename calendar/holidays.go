package calendar

import "time"

// =============================================================================
// SWISS PUBLIC HOLIDAYS
// =============================================================================
// Fixed holidays plus the Easter-derived ones. These are the organization-wide
// holidays used to seed the public holiday table; individual entries can
// still be managed by hand.

// Holiday is a named public holiday.
type Holiday struct {
	Date Date
	Name string
}

// Easter returns Easter Sunday of the given year (Anonymous Gregorian
// computus).
func Easter(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}

// SwissPublicHolidays returns the public holidays of a year, ordered by date.
func SwissPublicHolidays(year int) []Holiday {
	easter := Easter(year)

	holidays := []Holiday{
		{NewDate(year, time.January, 1), "Neujahr"},
		{NewDate(year, time.January, 2), "Berchtoldstag"},
		{easter.AddDays(-2), "Karfreitag"},
		{easter.AddDays(1), "Ostermontag"},
		{NewDate(year, time.May, 1), "Tag der Arbeit"},
		{easter.AddDays(39), "Auffahrt"},
		{easter.AddDays(50), "Pfingstmontag"},
		{NewDate(year, time.August, 1), "Bundesfeier"},
		{NewDate(year, time.December, 25), "Weihnachten"},
		{NewDate(year, time.December, 26), "Stephanstag"},
	}

	// Easter-derived dates can fall out of order relative to the fixed ones
	// (Auffahrt vs. Tag der Arbeit), so sort by date.
	for i := 1; i < len(holidays); i++ {
		for j := i; j > 0 && holidays[j].Date.Before(holidays[j-1].Date); j-- {
			holidays[j], holidays[j-1] = holidays[j-1], holidays[j]
		}
	}
	return holidays
}

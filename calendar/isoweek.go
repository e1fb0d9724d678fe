package calendar

import "time"

// =============================================================================
// ISO-8601 CALENDAR WEEKS
// =============================================================================
// Week 1 is the week containing the year's first Thursday (equivalently,
// the week containing January 4). Weeks start on Monday.

// YearWeek identifies an ISO-8601 calendar week.
type YearWeek struct {
	Year int
	Week int
}

// thursdayOf returns the Thursday of the week containing the given day.
func thursdayOf(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday == 0
	return d.AddDays(3 - offset)
}

// thursdayWeek1 returns the Thursday of week 1 of the given year.
// January 4 is always in the first calendar week.
func thursdayWeek1(year int) Date {
	return thursdayOf(NewDate(year, time.January, 4))
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// has53Weeks reports whether a year has 53 ISO weeks: any year beginning on
// a Thursday, or a leap year beginning on a Wednesday. In both cases the
// Thursday of week 1 falls on January 1 or 2.
func has53Weeks(year int) bool {
	first := thursdayWeek1(year)
	return first.Day() == 1 || (isLeap(year) && first.Day() == 2)
}

// ISOWeek returns the ISO-8601 calendar week containing the given day.
func ISOWeek(d Date) YearWeek {
	delta := DaysBetween(thursdayWeek1(d.Year()), thursdayOf(d))
	week := int(1.5 + float64(delta)/7)

	if week > 0 && week < 53 {
		return YearWeek{d.Year(), week}
	}

	if week <= 0 {
		// The day belongs to the last week of the previous year, unless the
		// week-1 anchor itself lies in the next calendar year.
		year := d.Year()
		if d.Before(thursdayWeek1(d.Year())) {
			year--
		}
		if has53Weeks(year) {
			return YearWeek{year, 53}
		}
		return YearWeek{year, 52}
	}

	// week == 53: valid only for long years, otherwise it is already
	// week 1 of the following year.
	if has53Weeks(d.Year()) {
		return YearWeek{d.Year(), 53}
	}
	return YearWeek{d.Year() + 1, 1}
}

package assignment

import (
	"sort"
	"time"

	"github.com/matthiask/zivinetz-sub000/calendar"
)

// =============================================================================
// DAY ACCOUNTANT - Per-day classification state machine
// =============================================================================
// Walks every calendar day of an assignment and classifies it under the
// Swiss civil-service rules (ZDV):
//
//   - Outside company holidays, every day counts toward the service total;
//     weekdays that are neither weekend nor public holiday are working days.
//   - During company holidays, public holidays and weekends still count.
//     A plain weekday inside a company holiday consumes a vacation day if
//     any remain; with the vacation pool exhausted it becomes forced leave,
//     which does not count toward service completion.
//
// The fold is pure and cannot fail: holiday sets are materialized by the
// caller, company holidays are consumed through a cursor over the sorted
// slice, and date_from <= effective-until is assumed.

// Tally holds the summary counters of one accounted assignment.
type Tally struct {
	// Inclusive day count of the regular range (extension excluded), the
	// basis for the vacation entitlement.
	AssignmentDays int

	// Vacation entitlement: zero below 180 days, then 8 plus 2 per
	// additional full 30 days (ZDV Art. 72).
	VacationDays int

	CompanyHolidayDays                   int
	PublicHolidaysDuringCompanyHolidays  int
	PublicHolidaysOutsideCompanyHolidays int
	VacationDaysDuringCompanyHolidays    int

	// What is left of the vacation pool after forced consumption during
	// company holidays.
	RemainingVacationDays int

	WorkingDays     int
	CountableDays   int
	ForcedLeaveDays int
}

// PeriodKey identifies one report period. Keys order chronologically.
type PeriodKey struct {
	Year  int
	Month time.Month
	Day   int
}

func (k PeriodKey) Date() calendar.Date {
	return calendar.NewDate(k.Year, k.Month, k.Day)
}

func (k PeriodKey) Less(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

// MonthBucket accumulates the classified days of one report period.
type MonthBucket struct {
	Key PeriodKey

	Free    int
	Working int
	Forced  int

	// First and last day actually seen in this bucket.
	Start calendar.Date
	End   calendar.Date
}

// CountableDays returns the days of the bucket that count toward the
// service total.
func (b MonthBucket) CountableDays() int {
	return b.Free + b.Working
}

// VacationEntitlement returns the vacation days granted for an assignment
// of the given total length.
func VacationEntitlement(totalDays int) int {
	if totalDays < 180 {
		return 0
	}
	// 30 days isn't exactly one month, but the ordinance counts full
	// 30-day blocks.
	return 8 + (totalDays-180)/30*2
}

// AccountDays classifies every day from DateFrom through the effective end
// and buckets the days by report period. Company holidays must overlap the
// assignment range and apply to its scope statement; order does not matter,
// they are sorted defensively.
func AccountDays(a Assignment, publicHolidays []calendar.Holiday, companyHolidays []CompanyHoliday) (Tally, []MonthBucket) {
	until := a.EffectiveUntil()

	isPublicHoliday := make(map[calendar.Date]bool, len(publicHolidays))
	for _, h := range publicHolidays {
		isPublicHoliday[h.Date] = true
	}

	pending := make([]CompanyHoliday, len(companyHolidays))
	copy(pending, companyHolidays)
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Period.From.Before(pending[j].Period.From)
	})

	tally := Tally{AssignmentDays: calendar.DaysBetween(a.DateFrom, a.DateUntil) + 1}
	tally.VacationDays = VacationEntitlement(tally.AssignmentDays)
	tally.RemainingVacationDays = tally.VacationDays

	buckets := map[PeriodKey]*MonthBucket{}
	cursor := 0

	for day := a.DateFrom; day.BeforeOrEqual(until); day = day.AddDays(1) {
		// Drop company holidays that ended before the current day. A
		// zero-length or out-of-range overlap is skipped without effect.
		for cursor < len(pending) && pending[cursor].Period.Until.Before(day) {
			cursor++
		}

		weekend := day.IsWeekend()
		public := isPublicHoliday[day]
		company := cursor < len(pending) && pending[cursor].Contains(day)

		slot := slotFree

		if company {
			tally.CompanyHolidayDays++

			switch {
			case public:
				tally.PublicHolidaysDuringCompanyHolidays++
				tally.CountableDays++
			case weekend:
				tally.CountableDays++
			case tally.RemainingVacationDays > 0:
				// Vacation has to be taken during company holidays if any
				// is left. Still countable toward the assignment total.
				tally.RemainingVacationDays--
				tally.VacationDaysDuringCompanyHolidays++
				tally.CountableDays++
			default:
				// No vacation days left: the drudge has to pause the
				// assignment.
				tally.ForcedLeaveDays++
				slot = slotForced
			}
		} else {
			tally.CountableDays++

			if public {
				tally.PublicHolidaysOutsideCompanyHolidays++
			}
			if !public && !weekend {
				tally.WorkingDays++
				slot = slotWorking
			}
		}

		key := bucketKey(a, day)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthBucket{Key: key, Start: day}
			buckets[key] = bucket
		}
		switch slot {
		case slotWorking:
			bucket.Working++
		case slotForced:
			bucket.Forced++
		default:
			bucket.Free++
		}
		bucket.End = day
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })

	return tally, out
}

type daySlot int

const (
	slotFree daySlot = iota
	slotWorking
	slotForced
)

// bucketKey selects the report period of a day. Periods are month-aligned
// except that the first period starts exactly at DateFrom, and an extension
// within the month of the original end gets its own period starting the day
// after that end. Extensions reaching into later months fall back to plain
// month periods (documented limitation).
func bucketKey(a Assignment, day calendar.Date) PeriodKey {
	key := PeriodKey{day.Year(), day.Month(), 1}

	if day.Month() == a.DateFrom.Month() && day.Year() == a.DateFrom.Year() {
		key = PeriodKey{a.DateFrom.Year(), a.DateFrom.Month(), a.DateFrom.Day()}
	}

	if day.After(a.DateUntil) &&
		day.Month() == a.DateUntil.Month() && day.Year() == a.DateUntil.Year() {
		start := a.DateUntil.AddDays(1)
		key = PeriodKey{start.Year(), start.Month(), start.Day()}
	}

	return key
}

/*
Package scheduling builds the weekly staffing grid.

PURPOSE:
  Aggregates the active-day spans of many assignments into per-ISO-week
  availability counts, subtracts conscripts away on the environment course,
  and compares the net availability of each week against the configured
  weekly quota. The output is a classified week summary row plus one cell
  row per assignment, ready for rendering by an external consumer.

KEY CONCEPTS:
  - Week:        a Monday with its ISO week label
  - WeekSummary: availability, course absences, net count, quota band
  - Row/Cell:    per-assignment week markers (active, start/end day, course)

DESIGN PRINCIPLES:
  1. Pure aggregation: all assignments and quotas are materialized inputs
  2. Degenerate inputs (no assignments, empty window) yield zero grids,
     never errors
*/
package scheduling

import (
	"sort"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
)

// =============================================================================
// QUOTA BANDING
// =============================================================================

// A drudge counts as available in a week once it is substantially present,
// meaning at least this many active days.
const availabilityThreshold = 3

type Band int

const (
	BandNone     Band = iota
	BandFarUnder      // net < quota-6
	BandUnder         // quota-6 <= net < quota-1
	BandOver          // quota+1 < net <= quota+6
	BandFarOver       // net > quota+6
)

// String returns the CSS class the frontends key their colors on.
func (b Band) String() string {
	switch b {
	case BandFarUnder:
		return "darkblue"
	case BandUnder:
		return "blue"
	case BandOver:
		return "orange"
	case BandFarOver:
		return "red"
	}
	return ""
}

// Classify compares a week's net availability against its quota. Weeks
// within one of the quota stay unmarked.
func Classify(net, quota int) Band {
	switch {
	case net < quota-6:
		return BandFarUnder
	case net < quota-1:
		return BandUnder
	case net > quota+6:
		return BandFarOver
	case net > quota+1:
		return BandOver
	}
	return BandNone
}

// =============================================================================
// GRID
// =============================================================================

// Week is one column of the grid.
type Week struct {
	Monday calendar.Date
	calendar.YearWeek

	// The week containing today, for highlighting.
	IsCurrent bool
}

// WeekSummary carries the aggregated counts of one week.
type WeekSummary struct {
	Week Week

	// Drudges with at least availabilityThreshold active days.
	Available int
	// Assignments whose environment course falls into this week.
	CourseAbsences int
	// Available minus CourseAbsences.
	Net int

	// Total active assignment days, for the average figure.
	ActiveDays int

	// Nil when no quota is configured for this week (or the scope's
	// accommodation regime has no quotas at all).
	Quota *int
	Band  Band
}

// Cell is one assignment-week intersection.
type Cell struct {
	Active bool
	Days   int

	// Day of month when the assignment starts or ends in this week,
	// zero otherwise.
	StartDay int
	EndDay   int

	Course bool
}

// Row is the week cells of one assignment.
type Row struct {
	Assignment assignment.Assignment
	Cells      []Cell
}

// Grid is the classified scheduling matrix.
type Grid struct {
	Weeks []WeekSummary
	Rows  []Row
}

// AverageDaysPerWeek returns the mean active assignment days per week.
// An empty window averages to zero rather than dividing by it.
func (g Grid) AverageDaysPerWeek() float64 {
	if len(g.Weeks) == 0 {
		return 0
	}
	total := 0
	for _, w := range g.Weeks {
		total += w.ActiveDays
	}
	return float64(total) / float64(len(g.Weeks))
}

// Input bundles the materialized inputs of one grid build.
type Input struct {
	// Window of interest; From is normalized to its Monday.
	Window calendar.Period

	Assignments []assignment.Assignment

	// Weekly quotas keyed by the week's Monday, already filtered to the
	// requested scope. A nil map disables quota comparison entirely.
	Quotas map[calendar.Date]int

	// Today anchors the current-week highlight; zero means time.Now.
	Today calendar.Date
}

// BuildGrid aggregates the assignments into the weekly grid. An empty
// assignment set yields a grid of all-zero summaries.
func BuildGrid(in Input) Grid {
	from := calendar.MondayOf(in.Window.From)
	until := in.Window.Until

	today := in.Today
	if today.IsZero() {
		today = calendar.Today()
	}
	thisMonday := calendar.MondayOf(today)

	var weeks []WeekSummary
	index := map[calendar.YearWeek]int{}
	for monday := from; monday.BeforeOrEqual(until); monday = monday.AddDays(7) {
		yw := calendar.ISOWeek(monday)
		index[yw] = len(weeks)
		weeks = append(weeks, WeekSummary{Week: Week{
			Monday:    monday,
			YearWeek:  yw,
			IsCurrent: monday.Equal(thisMonday),
		}})
	}

	sorted := make([]assignment.Assignment, len(in.Assignments))
	copy(sorted, in.Assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DateFrom.Equal(sorted[j].DateFrom) {
			return sorted[i].DateFrom.Before(sorted[j].DateFrom)
		}
		return sorted[i].DateUntil.Before(sorted[j].DateUntil)
	})

	// Per-week active day counts, aggregated per drudge across all of their
	// assignments.
	drudgeDays := make([]map[string]int, len(weeks))
	rows := make([]Row, 0, len(sorted))

	for _, a := range sorted {
		row := Row{Assignment: a, Cells: make([]Cell, len(weeks))}
		span := a.ActiveSpan()

		for day := maxDate(span.From, from); day.BeforeOrEqual(minDate(span.Until, until)); day = day.AddDays(1) {
			i, ok := index[calendar.ISOWeek(day)]
			if !ok {
				continue
			}
			if drudgeDays[i] == nil {
				drudgeDays[i] = map[string]int{}
			}
			drudgeDays[i][a.DrudgeID]++
			weeks[i].ActiveDays++

			cell := &row.Cells[i]
			cell.Active = true
			cell.Days++
			if day.Equal(span.From) {
				cell.StartDay = day.Day()
			}
			if day.Equal(span.Until) {
				cell.EndDay = day.Day()
			}
		}

		course := a.EnvironmentCourseDate
		if !course.IsZero() && span.Contains(course) {
			if i, ok := index[calendar.ISOWeek(course)]; ok {
				weeks[i].CourseAbsences++
				row.Cells[i].Course = true
			}
		}

		rows = append(rows, row)
	}

	for i := range weeks {
		for _, days := range drudgeDays[i] {
			if days >= availabilityThreshold {
				weeks[i].Available++
			}
		}
		weeks[i].Net = weeks[i].Available - weeks[i].CourseAbsences

		if in.Quotas != nil {
			if q, ok := in.Quotas[weeks[i].Week.Monday]; ok {
				quota := q
				weeks[i].Quota = &quota
				weeks[i].Band = Classify(weeks[i].Net, quota)
			}
		}
	}

	return Grid{Weeks: weeks, Rows: rows}
}

func minDate(a, b calendar.Date) calendar.Date {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b calendar.Date) calendar.Date {
	if a.After(b) {
		return a
	}
	return b
}

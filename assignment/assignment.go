/*
Package assignment implements the day accounting and expense engine for
civil-service assignments.

PURPOSE:
  An assignment is a conscript ("drudge") working for an organization over a
  date range under a compensation specification. This package walks every
  calendar day of that range, classifies it under the Swiss civil-service
  rules (working / free / forced leave, vacation consumption during company
  holidays), turns the classified days into monthly expense estimates, and
  materializes those estimates as expense reports.

KEY CONCEPTS:
  - Assignment:    date range + specification + lifecycle status
  - Tally:         summary day counters for a whole assignment
  - MonthBucket:   per-report-period day counts (month-aligned except for
                   the first partial month and an extension tail)
  - ExpenseReport: the persisted, user-editable monthly record

DESIGN PRINCIPLES:
  1. Pure folds: day accounting and expense aggregation never touch a store
  2. All inputs (holidays, policies, existing reports) are materialized
     before the fold begins
  3. Money is decimal.Decimal throughout

SEE ALSO:
  - accountant.go: The per-day classification state machine
  - expenses.go:   Monthly estimates with the clothing cap
  - generator.go:  Idempotent report creation
*/
package assignment

import (
	"fmt"

	"github.com/matthiask/zivinetz-sub000/calendar"
)

// =============================================================================
// STATUS - Assignment lifecycle
// =============================================================================

type Status int

const (
	StatusTentative Status = 10
	StatusArranged  Status = 20
	StatusMobilized Status = 30
	StatusDeclined  Status = 40
)

func (s Status) String() string {
	switch s {
	case StatusTentative:
		return "tentative"
	case StatusArranged:
		return "arranged"
	case StatusMobilized:
		return "mobilized"
	case StatusDeclined:
		return "declined"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// =============================================================================
// DRUDGE - The conscript being scheduled
// =============================================================================

// Drudge is the civil-service conscript. Only the fields the engine needs;
// personal data management is out of scope.
type Drudge struct {
	ID             string
	ZDPNo          string
	Name           string
	RegionalOffice string
}

// =============================================================================
// ASSIGNMENT
// =============================================================================

// Assignment is one work engagement of a drudge under a specification.
// Zero-valued dates mean "not set".
type Assignment struct {
	ID               string
	DrudgeID         string
	SpecificationID  string
	ScopeStatementID string

	DateFrom  calendar.Date
	DateUntil calendar.Date

	// Only set if the assignment has been extended.
	DateUntilExtension calendar.Date

	PartOfLongAssignment bool

	Status      Status
	ArrangedOn  calendar.Date
	MobilizedOn calendar.Date

	EnvironmentCourseDate calendar.Date
	MotorSawCourseDate    calendar.Date
}

// EffectiveUntil returns the extension end when present, the regular end
// otherwise.
func (a Assignment) EffectiveUntil() calendar.Date {
	if !a.DateUntilExtension.IsZero() {
		return a.DateUntilExtension
	}
	return a.DateUntil
}

// ActiveSpan returns the inclusive period the assignment covers.
func (a Assignment) ActiveSpan() calendar.Period {
	return calendar.Period{From: a.DateFrom, Until: a.EffectiveUntil()}
}

func (a Assignment) String() string {
	return fmt.Sprintf("%s on %s (%s - %s)",
		a.DrudgeID, a.SpecificationID, a.DateFrom, a.EffectiveUntil())
}

// =============================================================================
// COMPANY HOLIDAY - Organization closure interval
// =============================================================================

// CompanyHoliday is a closed date interval during which the organization
// itself is closed. It may apply to a subset of scope statements; an empty
// AppliesTo applies everywhere.
type CompanyHoliday struct {
	ID        string
	Period    calendar.Period
	AppliesTo []string
}

// Contains reports whether the day falls inside the closure.
func (ch CompanyHoliday) Contains(d calendar.Date) bool {
	return ch.Period.Contains(d)
}

// AppliesToScope reports whether the closure affects the given scope
// statement.
func (ch CompanyHoliday) AppliesToScope(scopeID string) bool {
	if len(ch.AppliesTo) == 0 {
		return true
	}
	for _, id := range ch.AppliesTo {
		if id == scopeID {
			return true
		}
	}
	return false
}

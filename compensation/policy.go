/*
Package compensation resolves per-day monetary compensation.

PURPOSE:
  Swiss civil-service conscripts are compensated per day: spending money,
  meals, accommodation and clothing. The amounts come from two places:

  - Policy:        the federally published rates, versioned by validity date
  - Specification: per work-scope entitlement rules deciding which of those
                   rates apply (a benefit can be provided in kind, in which
                   case no money flows)

  Resolve() combines both into a Table of concrete amounts for one date.

DESIGN PRINCIPLES:
  1. decimal.Decimal for every amount; money never touches float64
  2. Policies are immutable; new rates mean a new Policy row
  3. Resolution is a pure function; callers decide which date applies
     (bucket start for estimates, mobilization date for report totals)

SEE ALSO:
  - specification.go: Entitlement rule enums
  - resolver.go:      Policy + Specification -> Table
*/
package compensation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/calendar"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrPolicyNotFound is returned when no compensation policy is in effect at
// the requested date (the date predates all policies). Surfaced to callers;
// never retried automatically.
var ErrPolicyNotFound = errors.New("no compensation policy in effect")

// PolicyNotFoundError carries the date that failed to resolve.
type PolicyNotFoundError struct {
	For calendar.Date
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("no compensation policy in effect at %s", e.For)
}

func (e *PolicyNotFoundError) Unwrap() error { return ErrPolicyNotFound }

// =============================================================================
// POLICY - Versioned federal compensation rates
// =============================================================================

// Policy holds the daily compensation rates valid from a given date.
// Policies are totally ordered by EffectiveFrom, which is unique.
type Policy struct {
	EffectiveFrom calendar.Date

	SpendingMoney decimal.Decimal

	BreakfastAtAccommodation decimal.Decimal
	LunchAtAccommodation     decimal.Decimal
	SupperAtAccommodation    decimal.Decimal

	BreakfastExternal decimal.Decimal
	LunchExternal     decimal.Decimal
	SupperExternal    decimal.Decimal

	// Daily compensation if the drudge returns home for the night.
	AccommodationHome decimal.Decimal

	// Only applies if public transport use is not reasonable.
	PrivateTransportPerKm decimal.Decimal

	// Daily clothing compensation and its cap across one assignment.
	Clothing                   decimal.Decimal
	ClothingLimitPerAssignment decimal.Decimal
}

// PolicySet is a collection of policies, not necessarily sorted.
type PolicySet []Policy

// ForDate returns the policy with the latest EffectiveFrom at or before the
// given date.
func (ps PolicySet) ForDate(d calendar.Date) (Policy, error) {
	best := -1
	for i, p := range ps {
		if p.EffectiveFrom.After(d) {
			continue
		}
		if best < 0 || p.EffectiveFrom.After(ps[best].EffectiveFrom) {
			best = i
		}
	}
	if best < 0 {
		return Policy{}, &PolicyNotFoundError{For: d}
	}
	return ps[best], nil
}

// Sorted returns the policies ordered by EffectiveFrom, oldest first.
func (ps PolicySet) Sorted() PolicySet {
	out := append(PolicySet{}, ps...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveFrom.Before(out[j].EffectiveFrom)
	})
	return out
}

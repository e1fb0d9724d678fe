package compensation

import "fmt"

// =============================================================================
// ENTITLEMENT RULES - Closed enums per benefit category
// =============================================================================

// AccommodationRule decides whether accommodation is provided in kind or
// compensated in money.
type AccommodationRule string

const (
	AccommodationProvided    AccommodationRule = "provided"
	AccommodationCompensated AccommodationRule = "compensated"
)

// MealRule decides whether a meal is compensated and at which rate.
type MealRule string

const (
	MealNoCompensation  MealRule = "no_compensation"
	MealAtAccommodation MealRule = "at_accommodation"
	MealExternal        MealRule = "external"
)

// ClothingRule decides whether clothing is provided or compensated.
type ClothingRule string

const (
	ClothingProvided    ClothingRule = "provided"
	ClothingCompensated ClothingRule = "compensated"
)

// DayCategory is the compensation category of a day. Forced leave is not a
// category: forced-leave days are never compensated.
type DayCategory string

const (
	DayWorking DayCategory = "working"
	DaySick    DayCategory = "sick"
	DayFree    DayCategory = "free"
)

// DayCategories lists all categories in canonical order.
var DayCategories = []DayCategory{DayWorking, DaySick, DayFree}

// =============================================================================
// SPECIFICATION - Per work-scope entitlement ruleset
// =============================================================================

// DayRules holds the entitlement rules of one day category.
type DayRules struct {
	Accommodation AccommodationRule
	Breakfast     MealRule
	Lunch         MealRule
	Supper        MealRule
}

// Specification is the entitlement ruleset of one (scope statement,
// with-accommodation) pair. Exactly one specification exists per pair.
type Specification struct {
	ID               string
	ScopeStatementID string

	// Short, unique code identifying this specification.
	Code string

	WithAccommodation bool

	Working DayRules
	Sick    DayRules
	Free    DayRules

	Clothing ClothingRule
}

// Rules returns the entitlement rules for a day category.
func (s Specification) Rules(cat DayCategory) DayRules {
	switch cat {
	case DayWorking:
		return s.Working
	case DaySick:
		return s.Sick
	case DayFree:
		return s.Free
	}
	panic(fmt.Sprintf("unknown day category %q", cat))
}

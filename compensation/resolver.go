package compensation

import (
	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/calendar"
)

// =============================================================================
// RESOLVER - Policy + Specification -> concrete daily amounts
// =============================================================================

// BenefitRates holds the resolved per-day amounts of one day category.
type BenefitRates struct {
	Accommodation decimal.Decimal
	Breakfast     decimal.Decimal
	Lunch         decimal.Decimal
	Supper        decimal.Decimal
}

// Meals returns breakfast + lunch + supper.
func (r BenefitRates) Meals() decimal.Decimal {
	return r.Breakfast.Add(r.Lunch).Add(r.Supper)
}

// Sum returns accommodation + all meals.
func (r BenefitRates) Sum() decimal.Decimal {
	return r.Accommodation.Add(r.Meals())
}

// Table is the resolved compensation for one specification at one date.
type Table struct {
	SpendingMoney decimal.Decimal

	Working BenefitRates
	Sick    BenefitRates
	Free    BenefitRates

	Clothing      decimal.Decimal
	ClothingLimit decimal.Decimal
}

// Rates returns the benefit rates for a day category.
func (t Table) Rates(cat DayCategory) BenefitRates {
	switch cat {
	case DayWorking:
		return t.Working
	case DaySick:
		return t.Sick
	}
	return t.Free
}

// DayTotal returns the full compensation of one day of the given category:
// spending money plus accommodation plus meals.
func (t Table) DayTotal(cat DayCategory) decimal.Decimal {
	return t.SpendingMoney.Add(t.Rates(cat).Sum())
}

// Resolve selects the policy in effect at forDate and applies the
// specification's entitlement rules to it. Benefits provided in kind
// resolve to zero. Fails with ErrPolicyNotFound when forDate predates all
// policies.
func Resolve(spec Specification, policies PolicySet, forDate calendar.Date) (Table, error) {
	policy, err := policies.ForDate(forDate)
	if err != nil {
		return Table{}, err
	}

	table := Table{SpendingMoney: policy.SpendingMoney}

	for _, cat := range DayCategories {
		rules := spec.Rules(cat)

		rates := BenefitRates{
			Breakfast: mealRate(policy, mealBreakfast, rules.Breakfast),
			Lunch:     mealRate(policy, mealLunch, rules.Lunch),
			Supper:    mealRate(policy, mealSupper, rules.Supper),
		}
		if rules.Accommodation == AccommodationCompensated {
			rates.Accommodation = policy.AccommodationHome
		}

		switch cat {
		case DayWorking:
			table.Working = rates
		case DaySick:
			table.Sick = rates
		case DayFree:
			table.Free = rates
		}
	}

	if spec.Clothing == ClothingCompensated {
		table.Clothing = policy.Clothing
		table.ClothingLimit = policy.ClothingLimitPerAssignment
	}

	return table, nil
}

type meal int

const (
	mealBreakfast meal = iota
	mealLunch
	mealSupper
)

func mealRate(policy Policy, m meal, rule MealRule) decimal.Decimal {
	switch rule {
	case MealAtAccommodation:
		switch m {
		case mealBreakfast:
			return policy.BreakfastAtAccommodation
		case mealLunch:
			return policy.LunchAtAccommodation
		case mealSupper:
			return policy.SupperAtAccommodation
		}
	case MealExternal:
		switch m {
		case mealBreakfast:
			return policy.BreakfastExternal
		case mealLunch:
			return policy.LunchExternal
		case mealSupper:
			return policy.SupperExternal
		}
	}
	return decimal.Zero
}

/*
Package factory provides preset policies and specifications.

PURPOSE:
  Bundles the published federal compensation rate sets and a couple of
  realistic work-scope specifications. Used to seed a fresh database and by
  tests that need a fully configured compensation environment without
  hand-building every rate.

USAGE:
  policies := factory.FederalRates()
  spec := factory.ProjectAdministration()
  table, err := compensation.Resolve(spec, policies, date)

SEE ALSO:
  - compensation/policy.go: Policy type
  - compensation/specification.go: Specification type
*/
package factory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FederalRates returns the historical federal compensation rate sets,
// oldest first.
func FederalRates() compensation.PolicySet {
	return compensation.PolicySet{
		{
			EffectiveFrom:              calendar.NewDate(2000, time.January, 1),
			SpendingMoney:              amount("5.00"),
			BreakfastAtAccommodation:   amount("3.50"),
			LunchAtAccommodation:       amount("10.00"),
			SupperAtAccommodation:      amount("8.00"),
			BreakfastExternal:          amount("8.00"),
			LunchExternal:              amount("19.00"),
			SupperExternal:             amount("15.00"),
			AccommodationHome:          amount("11.50"),
			PrivateTransportPerKm:      amount("0.65"),
			Clothing:                   amount("2.30"),
			ClothingLimitPerAssignment: amount("240.00"),
		},
		{
			EffectiveFrom:              calendar.NewDate(2011, time.February, 1),
			SpendingMoney:              amount("5.00"),
			BreakfastAtAccommodation:   amount("4.00"),
			LunchAtAccommodation:       amount("9.00"),
			SupperAtAccommodation:      amount("7.00"),
			BreakfastExternal:          amount("4.00"),
			LunchExternal:              amount("9.00"),
			SupperExternal:             amount("7.00"),
			AccommodationHome:          amount("5.00"),
			PrivateTransportPerKm:      amount("0.65"),
			Clothing:                   amount("2.30"),
			ClothingLimitPerAssignment: amount("240.00"),
		},
	}
}

// ProjectAdministration returns the office work specification: the drudge
// sleeps at home, eats lunch out, and receives clothing money.
func ProjectAdministration() compensation.Specification {
	return compensation.Specification{
		ID:                "spec-pa",
		ScopeStatementID:  "scope-53378",
		Code:              "PA",
		WithAccommodation: false,
		Working: compensation.DayRules{
			Accommodation: compensation.AccommodationCompensated,
			Breakfast:     compensation.MealAtAccommodation,
			Lunch:         compensation.MealExternal,
			Supper:        compensation.MealAtAccommodation,
		},
		Sick: compensation.DayRules{
			Accommodation: compensation.AccommodationCompensated,
			Breakfast:     compensation.MealAtAccommodation,
			Lunch:         compensation.MealAtAccommodation,
			Supper:        compensation.MealAtAccommodation,
		},
		Free: compensation.DayRules{
			Accommodation: compensation.AccommodationCompensated,
			Breakfast:     compensation.MealAtAccommodation,
			Lunch:         compensation.MealAtAccommodation,
			Supper:        compensation.MealAtAccommodation,
		},
		Clothing: compensation.ClothingCompensated,
	}
}

// FieldGroup returns the field conservation group specification: lodging and
// most meals are provided in kind.
func FieldGroup() compensation.Specification {
	noComp := compensation.DayRules{
		Accommodation: compensation.AccommodationProvided,
		Breakfast:     compensation.MealNoCompensation,
		Lunch:         compensation.MealNoCompensation,
		Supper:        compensation.MealNoCompensation,
	}

	spec := compensation.Specification{
		ID:                "spec-fu",
		ScopeStatementID:  "scope-53377",
		Code:              "F(U)",
		WithAccommodation: true,
		Working:           noComp,
		Sick:              noComp,
		Free:              noComp,
		Clothing:          compensation.ClothingCompensated,
	}
	spec.Working.Lunch = compensation.MealExternal
	return spec
}

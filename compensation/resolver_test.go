package compensation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
	"github.com/matthiask/zivinetz-sub000/factory"
)

func assertAmount(t *testing.T, want string, got interface{ StringFixed(int32) string }) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestPolicySet_ForDate(t *testing.T) {
	policies := factory.FederalRates()

	// GIVEN two rate sets effective 2000-01-01 and 2011-02-01
	// THEN the latest one at or before the target date applies.
	p, err := policies.ForDate(calendar.NewDate(2010, time.April, 15))
	require.NoError(t, err)
	assert.Equal(t, calendar.NewDate(2000, time.January, 1), p.EffectiveFrom)

	p, err = policies.ForDate(calendar.NewDate(2011, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, calendar.NewDate(2011, time.February, 1), p.EffectiveFrom)

	p, err = policies.ForDate(calendar.NewDate(2014, time.June, 2))
	require.NoError(t, err)
	assert.Equal(t, calendar.NewDate(2011, time.February, 1), p.EffectiveFrom)
}

func TestPolicySet_ForDate_NotFound(t *testing.T) {
	policies := factory.FederalRates()

	_, err := policies.ForDate(calendar.NewDate(1999, time.December, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, compensation.ErrPolicyNotFound)

	var notFound *compensation.PolicyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, calendar.NewDate(1999, time.December, 31), notFound.For)
}

func TestResolve_ProjectAdministration(t *testing.T) {
	// GIVEN the office specification resolved against the 2011 rate set
	table, err := compensation.Resolve(
		factory.ProjectAdministration(),
		factory.FederalRates(),
		calendar.NewDate(2014, time.June, 2),
	)
	require.NoError(t, err)

	assertAmount(t, "5.00", table.SpendingMoney)

	// Working: accommodation compensated, breakfast/supper at accommodation,
	// lunch external.
	assertAmount(t, "5.00", table.Working.Accommodation)
	assertAmount(t, "4.00", table.Working.Breakfast)
	assertAmount(t, "9.00", table.Working.Lunch)
	assertAmount(t, "7.00", table.Working.Supper)
	assertAmount(t, "30.00", table.DayTotal(compensation.DayWorking))

	// Free: everything at accommodation.
	assertAmount(t, "25.00", table.Free.Sum())
	assertAmount(t, "30.00", table.DayTotal(compensation.DayFree))

	assertAmount(t, "2.30", table.Clothing)
	assertAmount(t, "240.00", table.ClothingLimit)
}

func TestResolve_FieldGroup_ProvidedBenefitsAreZero(t *testing.T) {
	// GIVEN the field specification (lodging and most meals in kind)
	table, err := compensation.Resolve(
		factory.FieldGroup(),
		factory.FederalRates(),
		calendar.NewDate(2012, time.May, 16),
	)
	require.NoError(t, err)

	// Only the working-day external lunch is compensated.
	assertAmount(t, "0.00", table.Working.Accommodation)
	assertAmount(t, "0.00", table.Working.Breakfast)
	assertAmount(t, "9.00", table.Working.Lunch)
	assertAmount(t, "0.00", table.Working.Supper)

	assertAmount(t, "0.00", table.Free.Sum())
	assertAmount(t, "0.00", table.Sick.Sum())

	// Spending money applies regardless.
	assertAmount(t, "14.00", table.DayTotal(compensation.DayWorking))
	assertAmount(t, "5.00", table.DayTotal(compensation.DayFree))
}

func TestResolve_ClothingProvided(t *testing.T) {
	spec := factory.ProjectAdministration()
	spec.Clothing = compensation.ClothingProvided

	table, err := compensation.Resolve(spec, factory.FederalRates(), calendar.NewDate(2014, time.June, 2))
	require.NoError(t, err)

	assertAmount(t, "0.00", table.Clothing)
	assertAmount(t, "0.00", table.ClothingLimit)
}

func TestResolve_OlderRateSet(t *testing.T) {
	// A mobilization date before 2011-02-01 resolves against the 2000 rates.
	table, err := compensation.Resolve(
		factory.ProjectAdministration(),
		factory.FederalRates(),
		calendar.NewDate(2010, time.April, 15),
	)
	require.NoError(t, err)

	assertAmount(t, "11.50", table.Working.Accommodation)
	assertAmount(t, "3.50", table.Working.Breakfast)
	assertAmount(t, "19.00", table.Working.Lunch)
	assertAmount(t, "8.00", table.Working.Supper)
	assertAmount(t, "47.00", table.DayTotal(compensation.DayWorking))
	assertAmount(t, "38.00", table.DayTotal(compensation.DayFree))
}

package assignment_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/factory"
)

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func TestAggregate_ShortAssignment(t *testing.T) {
	a := assignment.Assignment{
		DateFrom:  date(2014, time.September, 8),
		DateUntil: date(2014, time.October, 3),
	}
	_, buckets := assignment.AccountDays(a, nil, nil)

	estimates, err := assignment.Aggregate(
		buckets, factory.ProjectAdministration(), factory.FederalRates(),
		assignment.AggregatorConfig{},
	)
	require.NoError(t, err)
	require.Len(t, estimates, 2)

	// September: 23 countable days (17 working, 6 free).
	assertAmount(t, "115.00", estimates[0].SpendingMoney)
	assertAmount(t, "52.90", estimates[0].Clothing)
	assertAmount(t, "115.00", estimates[0].Accommodation)
	assertAmount(t, "460.00", estimates[0].Food)
	assertAmount(t, "742.90", estimates[0].Total())

	// October: 3 working days.
	assertAmount(t, "6.90", estimates[1].Clothing)
	assertAmount(t, "96.90", estimates[1].Total())
}

func TestAggregate_ClothingCapExhausted(t *testing.T) {
	// GIVEN a half-year assignment: the clothing compensation runs against
	// the per-assignment limit of 240.00
	a := assignment.Assignment{
		DateFrom:  date(2010, time.August, 23),
		DateUntil: date(2011, time.February, 18),
	}
	holidays := append(
		calendar.SwissPublicHolidays(2010),
		calendar.SwissPublicHolidays(2011)...,
	)
	closure := []assignment.CompanyHoliday{{
		Period: calendar.Period{
			From:  date(2010, time.December, 25),
			Until: date(2011, time.January, 2),
		},
	}}
	_, buckets := assignment.AccountDays(a, holidays, closure)

	estimates, err := assignment.Aggregate(
		buckets, factory.ProjectAdministration(), factory.FederalRates(),
		assignment.AggregatorConfig{},
	)
	require.NoError(t, err)
	require.Len(t, estimates, 7)

	// THEN the month that exhausts the budget gets the remainder and every
	// later month gets nothing.
	for i, want := range []string{"20.70", "69.00", "71.30", "69.00", "10.00", "0.00", "0.00"} {
		assertAmount(t, want, estimates[i].Clothing)
	}

	total := decimal.Zero
	for _, e := range estimates {
		total = total.Add(e.Clothing)
	}
	assertAmount(t, "240.00", total)
}

func TestAggregate_ClothingBudgetOverride(t *testing.T) {
	a := assignment.Assignment{
		DateFrom:  date(2014, time.September, 8),
		DateUntil: date(2014, time.October, 3),
	}
	_, buckets := assignment.AccountDays(a, nil, nil)

	budget := decimal.RequireFromString("55.00")
	estimates, err := assignment.Aggregate(
		buckets, factory.ProjectAdministration(), factory.FederalRates(),
		assignment.AggregatorConfig{ClothingBudget: &budget},
	)
	require.NoError(t, err)

	assertAmount(t, "52.90", estimates[0].Clothing)
	assertAmount(t, "2.10", estimates[1].Clothing)
}

func TestAggregate_ProvidedBenefits(t *testing.T) {
	// The field specification provides lodging and most meals in kind: only
	// spending money, the working-day lunch and clothing remain.
	a := assignment.Assignment{
		DateFrom:  date(2014, time.September, 8),
		DateUntil: date(2014, time.September, 30),
	}
	_, buckets := assignment.AccountDays(a, nil, nil)

	estimates, err := assignment.Aggregate(
		buckets, factory.FieldGroup(), factory.FederalRates(),
		assignment.AggregatorConfig{},
	)
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	assertAmount(t, "0.00", estimates[0].Accommodation)
	assertAmount(t, "153.00", estimates[0].Food) // 17 working lunches at 9.00
	assertAmount(t, "115.00", estimates[0].SpendingMoney)
}

func TestAggregate_RateSetNotFound(t *testing.T) {
	a := assignment.Assignment{
		DateFrom:  date(1999, time.June, 1),
		DateUntil: date(1999, time.June, 30),
	}
	_, buckets := assignment.AccountDays(a, nil, nil)

	_, err := assignment.Aggregate(
		buckets, factory.ProjectAdministration(), factory.FederalRates(),
		assignment.AggregatorConfig{},
	)
	assert.Error(t, err)
}

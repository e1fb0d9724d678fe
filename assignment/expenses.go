package assignment

import (
	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/compensation"
)

// =============================================================================
// EXPENSE AGGREGATOR - Month buckets -> monthly money estimates
// =============================================================================

// MonthlyEstimate is the estimated expense of one report period. Forced
// leave days contribute nothing.
type MonthlyEstimate struct {
	Key PeriodKey

	SpendingMoney decimal.Decimal
	Clothing      decimal.Decimal
	Accommodation decimal.Decimal
	Food          decimal.Decimal
}

// Total returns the sum of all estimate positions.
func (e MonthlyEstimate) Total() decimal.Decimal {
	return e.SpendingMoney.Add(e.Clothing).Add(e.Accommodation).Add(e.Food)
}

// AggregatorConfig carries the tunables of the expense aggregation.
type AggregatorConfig struct {
	// ClothingBudget caps the clothing compensation across the whole
	// assignment. When nil, the cap comes from the clothing limit of the
	// policy resolved for the first bucket.
	ClothingBudget *decimal.Decimal
}

// Aggregate resolves compensation per bucket (at the bucket's start key)
// and computes the monthly estimates. The clothing budget is consumed in
// chronological order; the bucket that exhausts it absorbs the overage so
// the budget floors at zero.
func Aggregate(buckets []MonthBucket, spec compensation.Specification, policies compensation.PolicySet, cfg AggregatorConfig) ([]MonthlyEstimate, error) {
	estimates := make([]MonthlyEstimate, 0, len(buckets))

	var budget decimal.Decimal
	budgetSet := false
	if cfg.ClothingBudget != nil {
		budget = *cfg.ClothingBudget
		budgetSet = true
	}

	for _, bucket := range buckets {
		table, err := compensation.Resolve(spec, policies, bucket.Key.Date())
		if err != nil {
			return nil, err
		}

		free := decimal.NewFromInt(int64(bucket.Free))
		working := decimal.NewFromInt(int64(bucket.Working))
		countable := free.Add(working)

		estimate := MonthlyEstimate{
			Key:           bucket.Key,
			SpendingMoney: countable.Mul(table.SpendingMoney),
			Clothing:      countable.Mul(table.Clothing),
			Accommodation: free.Mul(table.Free.Accommodation).Add(working.Mul(table.Working.Accommodation)),
			Food:          free.Mul(table.Free.Meals()).Add(working.Mul(table.Working.Meals())),
		}

		if !budgetSet {
			budget = table.ClothingLimit
			budgetSet = true
		}

		budget = budget.Sub(estimate.Clothing)
		if budget.IsNegative() {
			estimate.Clothing = estimate.Clothing.Add(budget)
			budget = decimal.Zero
		}

		estimates = append(estimates, estimate)
	}

	return estimates, nil
}

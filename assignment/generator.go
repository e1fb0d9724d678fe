package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
)

// =============================================================================
// REPORT GENERATOR - Materialize month buckets as expense reports
// =============================================================================

// ErrReportExists is returned by stores when a report for the same
// assignment and period start already exists.
var ErrReportExists = errors.New("expense report for this period already exists")

// ReportStore is the persistence the generator needs. Implemented by both
// the in-memory and the sqlite store.
type ReportStore interface {
	ReportsForAssignment(ctx context.Context, assignmentID string) ([]ExpenseReport, error)
	CreateReport(ctx context.Context, report *ExpenseReport) error
}

// GenerateInput bundles the materialized inputs of one generation run.
type GenerateInput struct {
	Assignment      Assignment
	Specification   compensation.Specification
	Policies        compensation.PolicySet
	PublicHolidays  []calendar.Holiday
	CompanyHolidays []CompanyHoliday

	// Optional override for the assignment-wide clothing cap.
	ClothingBudget *decimal.Decimal
}

// ReportGenerator creates the missing expense reports of an assignment.
type ReportGenerator struct {
	Store ReportStore
}

// Generate accounts the assignment's days, estimates the monthly expenses
// and creates one pending report per report period that has none yet.
// Existing reports are left untouched whatever their content, so the
// operation is idempotent and safe after an extension. Returns the number
// of reports created.
func (g ReportGenerator) Generate(ctx context.Context, in GenerateInput) (int, error) {
	_, buckets := AccountDays(in.Assignment, in.PublicHolidays, in.CompanyHolidays)

	estimates, err := Aggregate(buckets, in.Specification, in.Policies, AggregatorConfig{
		ClothingBudget: in.ClothingBudget,
	})
	if err != nil {
		return 0, err
	}

	existing, err := g.Store.ReportsForAssignment(ctx, in.Assignment.ID)
	if err != nil {
		return 0, err
	}
	occupied := make(map[PeriodKey]bool, len(existing))
	for i := range existing {
		occupied[existing[i].PeriodKey()] = true
	}

	created := 0
	for i, bucket := range buckets {
		if occupied[bucket.Key] {
			continue
		}

		report := &ExpenseReport{
			ID:              uuid.NewString(),
			AssignmentID:    in.Assignment.ID,
			SpecificationID: in.Assignment.SpecificationID,
			PeriodStart:     bucket.Start,
			PeriodEnd:       bucket.End,
			ReportNo:        fmt.Sprintf("%04d-%02d", bucket.Key.Year, int(bucket.Key.Month)),
			Status:          ReportPending,

			WorkingDays:     bucket.Working,
			FreeDays:        bucket.Free,
			ForcedLeaveDays: bucket.Forced,

			CalculatedTotalDays: bucket.Free + bucket.Working + bucket.Forced,

			ClothingExpenses:  estimates[i].Clothing,
			TransportExpenses: decimal.Zero,
			Miscellaneous:     decimal.Zero,
		}

		if _, err := report.RecalculateTotal(in.Assignment, in.Specification, in.Policies); err != nil {
			return created, err
		}

		err := g.Store.CreateReport(ctx, report)
		if errors.Is(err, ErrReportExists) {
			// Lost the race against a concurrent generation run. The other
			// report is just as good.
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

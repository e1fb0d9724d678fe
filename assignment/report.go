package assignment

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
)

// =============================================================================
// EXPENSE REPORT - Persisted monthly record
// =============================================================================

type ReportStatus int

const (
	ReportPending ReportStatus = 10
	ReportFilled  ReportStatus = 20
	ReportPaid    ReportStatus = 30
)

func (s ReportStatus) String() string {
	switch s {
	case ReportPending:
		return "pending"
	case ReportFilled:
		return "filled"
	case ReportPaid:
		return "paid"
	}
	return fmt.Sprintf("report status(%d)", int(s))
}

// ErrReportPaid is returned when editing or deleting a paid expense report.
// This is a policy check surfaced to the user, not a data error.
var ErrReportPaid = errors.New("paid expense reports cannot be modified")

// ExpenseReport is one persisted report covering a single report period of
// an assignment. Day counts and expense fields are editable until the
// report is paid; CalculatedTotalDays is set at creation and read-only.
type ExpenseReport struct {
	ID              string
	AssignmentID    string
	SpecificationID string

	PeriodStart calendar.Date
	PeriodEnd   calendar.Date
	ReportNo    string

	Status ReportStatus

	WorkingDays     int
	FreeDays        int
	SickDays        int
	HolidayDays     int
	ForcedLeaveDays int

	WorkingDaysNotes     string
	FreeDaysNotes        string
	SickDaysNotes        string
	HolidayDaysNotes     string
	ForcedLeaveDaysNotes string

	// Set by the generator; manual edits to day counts do not update it.
	CalculatedTotalDays int

	ClothingExpenses      decimal.Decimal
	ClothingExpensesNotes string
	TransportExpenses     decimal.Decimal
	TransportExpNotes     string
	Miscellaneous         decimal.Decimal
	MiscellaneousNotes    string

	Total decimal.Decimal
}

// PeriodKey returns the period key identifying this report.
func (r *ExpenseReport) PeriodKey() PeriodKey {
	return PeriodKey{r.PeriodStart.Year(), r.PeriodStart.Month(), r.PeriodStart.Day()}
}

// TotalDays sums the five editable day-count fields.
func (r *ExpenseReport) TotalDays() int {
	return r.WorkingDays + r.FreeDays + r.SickDays + r.HolidayDays + r.ForcedLeaveDays
}

// IsEditable reports whether the record may still be changed or deleted.
func (r *ExpenseReport) IsEditable() bool {
	return r.Status < ReportPaid
}

// DayCountWarning reports whether the editable day counts diverge from the
// calculated total. A divergence needs explicit user confirmation but is
// never rejected outright.
func (r *ExpenseReport) DayCountWarning() bool {
	return r.TotalDays() != r.CalculatedTotalDays
}

// RecalculateTotal recomputes r.Total from the compensation in effect at
// the assignment's mobilization date. An unmobilized assignment has no
// resolved rate yet: the total becomes zero and the returned table is nil,
// which is not an error.
//
// Working, free and sick days use their own rate set, holiday days use the
// free rates, forced leave contributes zero. Transport, clothing and
// miscellaneous expenses are added on top.
func (r *ExpenseReport) RecalculateTotal(a Assignment, spec compensation.Specification, policies compensation.PolicySet) (*compensation.Table, error) {
	return r.RecalculateTotalAsOf(a.MobilizedOn, spec, policies)
}

// RecalculateTotalAsOf is RecalculateTotal with an explicit rate date,
// for callers that supply a mobilization date not yet persisted.
func (r *ExpenseReport) RecalculateTotalAsOf(asOf calendar.Date, spec compensation.Specification, policies compensation.PolicySet) (*compensation.Table, error) {
	if asOf.IsZero() {
		r.Total = decimal.Zero
		return nil, nil
	}

	table, err := compensation.Resolve(spec, policies, asOf)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range []struct {
		days int
		cat  compensation.DayCategory
	}{
		{r.WorkingDays, compensation.DayWorking},
		{r.FreeDays, compensation.DayFree},
		{r.SickDays, compensation.DaySick},
		{r.HolidayDays, compensation.DayFree}, // holiday counts as free
	} {
		total = total.Add(table.DayTotal(line.cat).Mul(decimal.NewFromInt(int64(line.days))))
	}

	total = total.Add(r.TransportExpenses).Add(r.ClothingExpenses).Add(r.Miscellaneous)
	r.Total = total

	return &table, nil
}

package assignment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CHANGE TRACKING - Audit trail for expense report edits
// =============================================================================

// ChangeEntry records one field change of an expense report. Creation and
// deletion are recorded as entries with an empty Field.
type ChangeEntry struct {
	RecordID string
	At       time.Time
	Actor    string

	Field string
	From  string
	To    string
}

func (c ChangeEntry) String() string {
	if c.Field == "" {
		return fmt.Sprintf("%s: %s", c.RecordID, c.To)
	}
	return fmt.Sprintf("%s: %s %q -> %q", c.RecordID, c.Field, c.From, c.To)
}

// CreationEntry records that a report came into existence.
func CreationEntry(r *ExpenseReport, actor string, at time.Time) ChangeEntry {
	return ChangeEntry{RecordID: r.ID, At: at, Actor: actor, To: "created"}
}

// DeletionEntry records that a report was removed.
func DeletionEntry(r *ExpenseReport, actor string, at time.Time) ChangeEntry {
	return ChangeEntry{RecordID: r.ID, At: at, Actor: actor, To: "deleted"}
}

// StatusTransitionEntry records an assignment lifecycle transition.
func StatusTransitionEntry(a Assignment, from Status, actor string, at time.Time) ChangeEntry {
	return ChangeEntry{
		RecordID: a.ID,
		At:       at,
		Actor:    actor,
		Field:    "status",
		From:     from.String(),
		To:       a.Status.String(),
	}
}

// DiffReports compares two versions of the same report and returns one
// entry per changed tracked field. Notes fields are not tracked.
func DiffReports(old, updated *ExpenseReport, actor string, at time.Time) []ChangeEntry {
	var entries []ChangeEntry

	record := func(field, from, to string) {
		if from == to {
			return
		}
		entries = append(entries, ChangeEntry{
			RecordID: old.ID,
			At:       at,
			Actor:    actor,
			Field:    field,
			From:     from,
			To:       to,
		})
	}

	days := func(field string, from, to int) {
		record(field, fmt.Sprintf("%d", from), fmt.Sprintf("%d", to))
	}
	money := func(field string, from, to decimal.Decimal) {
		record(field, from.StringFixed(2), to.StringFixed(2))
	}

	record("status", old.Status.String(), updated.Status.String())

	days("working_days", old.WorkingDays, updated.WorkingDays)
	days("free_days", old.FreeDays, updated.FreeDays)
	days("sick_days", old.SickDays, updated.SickDays)
	days("holiday_days", old.HolidayDays, updated.HolidayDays)
	days("forced_leave_days", old.ForcedLeaveDays, updated.ForcedLeaveDays)

	money("clothing_expenses", old.ClothingExpenses, updated.ClothingExpenses)
	money("transport_expenses", old.TransportExpenses, updated.TransportExpenses)
	money("miscellaneous", old.Miscellaneous, updated.Miscellaneous)
	money("total", old.Total, updated.Total)

	return entries
}

/*
Package store defines the persistence interfaces of the engine.

PURPOSE:
  The core packages (assignment, compensation, scheduling) are pure and
  operate on materialized inputs. This package names the read/write surface
  they need from a database, so the engine can run against SQLite in
  production and an in-memory map store in tests.

IMPLEMENTATIONS:
  store/memory: mutex+map store for tests and development
  store/sqlite: database/sql + mattn/go-sqlite3, WAL mode

SEE ALSO:
  - assignment/generator.go: the generator's own narrower ReportStore
*/
package store

import (
	"context"
	"errors"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// =============================================================================
// FILTERS & RECORDS
// =============================================================================

// AssignmentFilter narrows ListAssignments. Zero values mean "no filter".
type AssignmentFilter struct {
	// Keep assignments whose active span overlaps [OverlapsFrom, OverlapsUntil].
	OverlapsFrom  calendar.Date
	OverlapsUntil calendar.Date

	ScopeStatementID string
	Statuses         []assignment.Status
}

// Quota is the target weekly headcount of one scope statement, keyed by the
// week's Monday.
type Quota struct {
	ScopeStatementID string
	Week             calendar.Date
	Value            int
}

// =============================================================================
// INTERFACES
// =============================================================================

type DrudgeStore interface {
	SaveDrudge(ctx context.Context, d assignment.Drudge) error
	GetDrudge(ctx context.Context, id string) (assignment.Drudge, error)
	ListDrudges(ctx context.Context) ([]assignment.Drudge, error)
}

type AssignmentStore interface {
	SaveAssignment(ctx context.Context, a assignment.Assignment) error
	GetAssignment(ctx context.Context, id string) (assignment.Assignment, error)
	ListAssignments(ctx context.Context, f AssignmentFilter) ([]assignment.Assignment, error)
}

type SpecificationStore interface {
	SaveSpecification(ctx context.Context, s compensation.Specification) error
	GetSpecification(ctx context.Context, id string) (compensation.Specification, error)
	ListSpecifications(ctx context.Context) ([]compensation.Specification, error)
}

type PolicyStore interface {
	SavePolicy(ctx context.Context, p compensation.Policy) error
	// ListPolicies returns all rate sets ordered by effective date.
	ListPolicies(ctx context.Context) (compensation.PolicySet, error)
}

type HolidayStore interface {
	// SavePublicHoliday upserts by date.
	SavePublicHoliday(ctx context.Context, h calendar.Holiday) error
	DeletePublicHoliday(ctx context.Context, d calendar.Date) error
	PublicHolidaysBetween(ctx context.Context, from, until calendar.Date) ([]calendar.Holiday, error)

	SaveCompanyHoliday(ctx context.Context, ch assignment.CompanyHoliday) error
	// CompanyHolidaysOverlapping returns closures overlapping the period
	// that apply to the scope statement (empty scope matches all).
	CompanyHolidaysOverlapping(ctx context.Context, p calendar.Period, scopeID string) ([]assignment.CompanyHoliday, error)
}

// ReportStore supersets the generator's assignment.ReportStore.
type ReportStore interface {
	CreateReport(ctx context.Context, r *assignment.ExpenseReport) error
	GetReport(ctx context.Context, id string) (assignment.ExpenseReport, error)
	ReportsForAssignment(ctx context.Context, assignmentID string) ([]assignment.ExpenseReport, error)
	UpdateReport(ctx context.Context, r *assignment.ExpenseReport) error
	DeleteReport(ctx context.Context, id string) error
}

type QuotaStore interface {
	SaveQuota(ctx context.Context, q Quota) error
	// QuotasBetween returns the quotas of a scope keyed by week Monday.
	QuotasBetween(ctx context.Context, scopeID string, from, until calendar.Date) (map[calendar.Date]int, error)
}

// ChangeStore keeps the audit trail. Entries are keyed by the record they
// describe (expense report or assignment ID).
type ChangeStore interface {
	AppendChange(ctx context.Context, e assignment.ChangeEntry) error
	ChangesFor(ctx context.Context, recordID string) ([]assignment.ChangeEntry, error)
}

// Store is the full persistence surface the HTTP layer wires together.
type Store interface {
	DrudgeStore
	AssignmentStore
	SpecificationStore
	PolicyStore
	HolidayStore
	ReportStore
	QuotaStore
	ChangeStore
}

// Package memory provides the in-memory store implementation (for
// testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
	"github.com/matthiask/zivinetz-sub000/store"
)

// =============================================================================
// MEMORY STORE - mutex+map implementation of store.Store
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	drudges         map[string]assignment.Drudge
	assignments     map[string]assignment.Assignment
	specifications  map[string]compensation.Specification
	policies        map[calendar.Date]compensation.Policy
	publicHolidays  map[calendar.Date]calendar.Holiday
	companyHolidays map[string]assignment.CompanyHoliday
	reports         map[string]assignment.ExpenseReport
	quotas          map[quotaKey]int
	changes         []assignment.ChangeEntry
}

type quotaKey struct {
	ScopeStatementID string
	Week             calendar.Date
}

func New() *Memory {
	return &Memory{
		drudges:         make(map[string]assignment.Drudge),
		assignments:     make(map[string]assignment.Assignment),
		specifications:  make(map[string]compensation.Specification),
		policies:        make(map[calendar.Date]compensation.Policy),
		publicHolidays:  make(map[calendar.Date]calendar.Holiday),
		companyHolidays: make(map[string]assignment.CompanyHoliday),
		reports:         make(map[string]assignment.ExpenseReport),
		quotas:          make(map[quotaKey]int),
	}
}

var _ store.Store = (*Memory)(nil)

// =============================================================================
// DRUDGES
// =============================================================================

func (m *Memory) SaveDrudge(_ context.Context, d assignment.Drudge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drudges[d.ID] = d
	return nil
}

func (m *Memory) GetDrudge(_ context.Context, id string) (assignment.Drudge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drudges[id]
	if !ok {
		return assignment.Drudge{}, store.ErrNotFound
	}
	return d, nil
}

func (m *Memory) ListDrudges(_ context.Context) ([]assignment.Drudge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]assignment.Drudge, 0, len(m.drudges))
	for _, d := range m.drudges {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZDPNo < out[j].ZDPNo })
	return out, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) SaveAssignment(_ context.Context, a assignment.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return assignment.Assignment{}, store.ErrNotFound
	}
	return a, nil
}

func (m *Memory) ListAssignments(_ context.Context, f store.AssignmentFilter) ([]assignment.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []assignment.Assignment
	for _, a := range m.assignments {
		if !matchesFilter(a, f) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateFrom.Equal(out[j].DateFrom) {
			return out[i].DateFrom.Before(out[j].DateFrom)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchesFilter(a assignment.Assignment, f store.AssignmentFilter) bool {
	if f.ScopeStatementID != "" && a.ScopeStatementID != f.ScopeStatementID {
		return false
	}
	if !f.OverlapsFrom.IsZero() && a.EffectiveUntil().Before(f.OverlapsFrom) {
		return false
	}
	if !f.OverlapsUntil.IsZero() && a.DateFrom.After(f.OverlapsUntil) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// =============================================================================
// SPECIFICATIONS & POLICIES
// =============================================================================

func (m *Memory) SaveSpecification(_ context.Context, s compensation.Specification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specifications[s.ID] = s
	return nil
}

func (m *Memory) GetSpecification(_ context.Context, id string) (compensation.Specification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.specifications[id]
	if !ok {
		return compensation.Specification{}, store.ErrNotFound
	}
	return s, nil
}

func (m *Memory) ListSpecifications(_ context.Context) ([]compensation.Specification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]compensation.Specification, 0, len(m.specifications))
	for _, s := range m.specifications {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Memory) SavePolicy(_ context.Context, p compensation.Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Effective dates are unique; same date replaces.
	m.policies[p.EffectiveFrom] = p
	return nil
}

func (m *Memory) ListPolicies(_ context.Context) (compensation.PolicySet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(compensation.PolicySet, 0, len(m.policies))
	for _, p := range m.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EffectiveFrom.Before(out[j].EffectiveFrom)
	})
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SavePublicHoliday(_ context.Context, h calendar.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publicHolidays[h.Date] = h
	return nil
}

func (m *Memory) DeletePublicHoliday(_ context.Context, d calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.publicHolidays[d]; !ok {
		return store.ErrNotFound
	}
	delete(m.publicHolidays, d)
	return nil
}

func (m *Memory) PublicHolidaysBetween(_ context.Context, from, until calendar.Date) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []calendar.Holiday
	for _, h := range m.publicHolidays {
		if h.Date.Before(from) || h.Date.After(until) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) SaveCompanyHoliday(_ context.Context, ch assignment.CompanyHoliday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companyHolidays[ch.ID] = ch
	return nil
}

func (m *Memory) CompanyHolidaysOverlapping(_ context.Context, p calendar.Period, scopeID string) ([]assignment.CompanyHoliday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []assignment.CompanyHoliday
	for _, ch := range m.companyHolidays {
		if !p.Overlaps(ch.Period) {
			continue
		}
		if scopeID != "" && !ch.AppliesToScope(scopeID) {
			continue
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period.From.Before(out[j].Period.From)
	})
	return out, nil
}

// =============================================================================
// EXPENSE REPORTS
// =============================================================================

func (m *Memory) CreateReport(_ context.Context, r *assignment.ExpenseReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reports {
		if existing.AssignmentID == r.AssignmentID && existing.PeriodStart.Equal(r.PeriodStart) {
			return assignment.ErrReportExists
		}
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *Memory) GetReport(_ context.Context, id string) (assignment.ExpenseReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return assignment.ExpenseReport{}, store.ErrNotFound
	}
	return r, nil
}

func (m *Memory) ReportsForAssignment(_ context.Context, assignmentID string) ([]assignment.ExpenseReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []assignment.ExpenseReport
	for _, r := range m.reports {
		if r.AssignmentID == assignmentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out, nil
}

func (m *Memory) UpdateReport(_ context.Context, r *assignment.ExpenseReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[r.ID]; !ok {
		return store.ErrNotFound
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *Memory) DeleteReport(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

// =============================================================================
// QUOTAS & CHANGE LOG
// =============================================================================

func (m *Memory) SaveQuota(_ context.Context, q store.Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotas[quotaKey{q.ScopeStatementID, q.Week}] = q.Value
	return nil
}

func (m *Memory) QuotasBetween(_ context.Context, scopeID string, from, until calendar.Date) (map[calendar.Date]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[calendar.Date]int)
	for k, v := range m.quotas {
		if k.ScopeStatementID != scopeID {
			continue
		}
		if k.Week.Before(from) || k.Week.After(until) {
			continue
		}
		out[k.Week] = v
	}
	return out, nil
}

func (m *Memory) AppendChange(_ context.Context, e assignment.ChangeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, e)
	return nil
}

func (m *Memory) ChangesFor(_ context.Context, recordID string) ([]assignment.ChangeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []assignment.ChangeEntry
	for _, e := range m.changes {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

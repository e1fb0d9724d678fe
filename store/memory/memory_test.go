package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/store"
	"github.com/matthiask/zivinetz-sub000/store/memory"
)

func date(y int, m time.Month, d int) calendar.Date {
	return calendar.NewDate(y, m, d)
}

func TestMemory_AssignmentFilter(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	require.NoError(t, m.SaveAssignment(ctx, assignment.Assignment{
		ID: "a1", ScopeStatementID: "scope-1",
		DateFrom:  date(2014, time.September, 8),
		DateUntil: date(2014, time.October, 3),
		Status:    assignment.StatusMobilized,
	}))
	require.NoError(t, m.SaveAssignment(ctx, assignment.Assignment{
		ID: "a2", ScopeStatementID: "scope-2",
		DateFrom:           date(2014, time.August, 1),
		DateUntil:          date(2014, time.August, 31),
		DateUntilExtension: date(2014, time.September, 10),
		Status:             assignment.StatusDeclined,
	}))

	// Overlap window catches the extension end, not just date_until.
	got, err := m.ListAssignments(ctx, store.AssignmentFilter{
		OverlapsFrom:  date(2014, time.September, 5),
		OverlapsUntil: date(2014, time.September, 30),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID) // ordered by start date

	got, err = m.ListAssignments(ctx, store.AssignmentFilter{
		ScopeStatementID: "scope-1",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)

	got, err = m.ListAssignments(ctx, store.AssignmentFilter{
		Statuses: []assignment.Status{assignment.StatusMobilized, assignment.StatusArranged},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestMemory_ReportUniqueness(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	r := &assignment.ExpenseReport{
		ID:           "r1",
		AssignmentID: "a1",
		PeriodStart:  date(2014, time.September, 8),
	}
	require.NoError(t, m.CreateReport(ctx, r))

	dup := &assignment.ExpenseReport{
		ID:           "r2",
		AssignmentID: "a1",
		PeriodStart:  date(2014, time.September, 8),
	}
	assert.ErrorIs(t, m.CreateReport(ctx, dup), assignment.ErrReportExists)

	// A different period is fine.
	dup.PeriodStart = date(2014, time.October, 1)
	assert.NoError(t, m.CreateReport(ctx, dup))

	reports, err := m.ReportsForAssignment(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r1", reports[0].ID)
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	_, err := m.GetAssignment(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.GetReport(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = m.UpdateReport(ctx, &assignment.ExpenseReport{ID: "nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = m.DeletePublicHoliday(ctx, date(2014, time.August, 1))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemory_CompanyHolidayScopeFilter(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	require.NoError(t, m.SaveCompanyHoliday(ctx, assignment.CompanyHoliday{
		ID: "ch1",
		Period: calendar.Period{
			From:  date(2010, time.December, 25),
			Until: date(2011, time.January, 2),
		},
		AppliesTo: []string{"scope-1"},
	}))
	require.NoError(t, m.SaveCompanyHoliday(ctx, assignment.CompanyHoliday{
		ID: "ch2",
		Period: calendar.Period{
			From:  date(2011, time.July, 25),
			Until: date(2011, time.July, 29),
		},
	}))

	window := calendar.Period{
		From:  date(2010, time.August, 23),
		Until: date(2011, time.February, 18),
	}

	// ch2 has no scope restriction but is outside the window.
	got, err := m.CompanyHolidaysOverlapping(ctx, window, "scope-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ch1", got[0].ID)

	// A scope ch1 does not apply to only sees the unrestricted closures.
	got, err = m.CompanyHolidaysOverlapping(ctx, window, "scope-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_Quotas(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	require.NoError(t, m.SaveQuota(ctx, store.Quota{
		ScopeStatementID: "scope-1",
		Week:             date(2014, time.September, 1),
		Value:            7,
	}))
	require.NoError(t, m.SaveQuota(ctx, store.Quota{
		ScopeStatementID: "scope-1",
		Week:             date(2014, time.September, 8),
		Value:            5,
	}))
	require.NoError(t, m.SaveQuota(ctx, store.Quota{
		ScopeStatementID: "scope-2",
		Week:             date(2014, time.September, 1),
		Value:            99,
	}))

	quotas, err := m.QuotasBetween(ctx, "scope-1",
		date(2014, time.September, 1), date(2014, time.September, 7))
	require.NoError(t, err)
	require.Len(t, quotas, 1)
	assert.Equal(t, 7, quotas[date(2014, time.September, 1)])
}

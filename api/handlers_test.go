/*
handlers_test.go - Unit tests for API handlers

Tests run the full router against the in-memory store, seeded with a
short autumn assignment on the project administration specification.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/factory"
	"github.com/matthiask/zivinetz-sub000/store"
	"github.com/matthiask/zivinetz-sub000/store/memory"
)

func date(y int, m time.Month, d int) calendar.Date {
	return calendar.NewDate(y, m, d)
}

func newTestServer(t *testing.T) (*memory.Memory, http.Handler) {
	t.Helper()
	st := memory.New()
	h := NewHandler(st)
	// Pin the clock inside the seeded assignment's span.
	h.now = func() time.Time {
		return time.Date(2014, time.September, 10, 12, 0, 0, 0, time.UTC)
	}
	return st, NewRouter(h)
}

// seedAutumnAssignment stores a drudge, the project administration
// specification, the federal rate sets and a mobilized four-week
// assignment. Returns the assignment ID.
func seedAutumnAssignment(t *testing.T, st *memory.Memory) string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.SaveDrudge(ctx, assignment.Drudge{
		ID: "d1", ZDPNo: "12345", Name: "Hans Muster",
	}))
	spec := factory.ProjectAdministration()
	require.NoError(t, st.SaveSpecification(ctx, spec))
	for _, p := range factory.FederalRates() {
		require.NoError(t, st.SavePolicy(ctx, p))
	}

	a := assignment.Assignment{
		ID:                    "a-1504",
		DrudgeID:              "d1",
		SpecificationID:       spec.ID,
		ScopeStatementID:      spec.ScopeStatementID,
		DateFrom:              date(2014, time.September, 8),
		DateUntil:             date(2014, time.October, 3),
		Status:                assignment.StatusMobilized,
		MobilizedOn:           date(2014, time.September, 8),
		EnvironmentCourseDate: date(2014, time.September, 15),
	}
	require.NoError(t, st.SaveAssignment(ctx, a))
	return a.ID
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "admin")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(into))
}

// =============================================================================
// DAY ACCOUNTING & EXPENSES
// =============================================================================

func TestGetAssignmentDays(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	rec := doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/days", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out DaySummaryDTO
	decode(t, rec, &out)

	assert.Equal(t, 26, out.Tally.AssignmentDays)
	assert.Equal(t, 20, out.Tally.WorkingDays)
	assert.Equal(t, 0, out.Tally.VacationDays)

	require.Len(t, out.Buckets, 2)
	assert.Equal(t, "2014-09-08", out.Buckets[0].Period)
	assert.Equal(t, 17, out.Buckets[0].WorkingDays)
	assert.Equal(t, 6, out.Buckets[0].FreeDays)
	assert.Equal(t, 3, out.Buckets[1].WorkingDays)
}

func TestGetAssignmentDays_NotFound(t *testing.T) {
	_, router := newTestServer(t)

	rec := doRequest(t, router, http.MethodGet, "/api/assignments/nope/days", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var out ErrorResponse
	decode(t, rec, &out)
	assert.Equal(t, "assignment not found", out.Error)
}

func TestGetAssignmentExpenses(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	rec := doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []EstimateDTO
	decode(t, rec, &out)
	require.Len(t, out, 2)
	assert.Equal(t, "742.90", out[0].Total)
	assert.Equal(t, "52.90", out[0].Clothing)
	assert.Equal(t, "96.90", out[1].Total)
}

func TestGetAssignmentExpenses_NoApplicableRates(t *testing.T) {
	// Move the assignment before the oldest rate set: the caller gets a
	// conflict, not a server error.
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	ctx := context.Background()
	a, err := st.GetAssignment(ctx, id)
	require.NoError(t, err)
	a.DateFrom = date(1999, time.March, 1)
	a.DateUntil = date(1999, time.March, 28)
	require.NoError(t, st.SaveAssignment(ctx, a))

	rec := doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/expenses", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// REPORT GENERATION & EDITING
// =============================================================================

func TestGenerateReports(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	rec := doRequest(t, router, http.MethodPost, "/api/assignments/"+id+"/reports/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out GenerateReportsResponse
	decode(t, rec, &out)
	assert.Equal(t, 2, out.Created)

	// A second run finds every period covered.
	rec = doRequest(t, router, http.MethodPost, "/api/assignments/"+id+"/reports/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.Equal(t, 0, out.Created)

	rec = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []ReportDTO
	decode(t, rec, &reports)
	require.Len(t, reports, 2)
	assert.Equal(t, "2014-09", reports[0].ReportNo)
	assert.Equal(t, "pending", reports[0].Status)
	assert.Equal(t, "742.90", reports[0].Total)
	assert.False(t, reports[0].DayCountWarning)
	assert.True(t, reports[0].Editable)
}

func generateAndFetchReports(t *testing.T, router http.Handler, id string) []ReportDTO {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/api/assignments/"+id+"/reports/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/assignments/"+id+"/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []ReportDTO
	decode(t, rec, &reports)
	return reports
}

func TestUpdateReport(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)
	reports := generateAndFetchReports(t, router, id)
	require.Len(t, reports, 2)

	working := 15
	status := "filled"
	rec := doRequest(t, router, http.MethodPut, "/api/reports/"+reports[0].ID, UpdateReportRequest{
		Status:      &status,
		WorkingDays: &working,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out ReportDTO
	decode(t, rec, &out)
	assert.Equal(t, 15, out.WorkingDays)
	assert.Equal(t, "filled", out.Status)
	// 15 + 6 free differs from the calculated 23; the client has to
	// confirm, the edit itself goes through.
	assert.True(t, out.DayCountWarning)
	// The total is stale until a recalculation is requested.
	assert.Equal(t, "742.90", out.Total)

	rec = doRequest(t, router, http.MethodGet, "/api/reports/"+reports[0].ID+"/changes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var changes []ChangeEntryDTO
	decode(t, rec, &changes)
	require.Len(t, changes, 2)
	assert.Equal(t, "admin", changes[0].Actor)
}

func TestUpdateReport_PaidIsImmutable(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)
	reports := generateAndFetchReports(t, router, id)

	ctx := context.Background()
	paid, err := st.GetReport(ctx, reports[0].ID)
	require.NoError(t, err)
	paid.Status = assignment.ReportPaid
	require.NoError(t, st.UpdateReport(ctx, &paid))

	working := 1
	rec := doRequest(t, router, http.MethodPut, "/api/reports/"+reports[0].ID, UpdateReportRequest{
		WorkingDays: &working,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/reports/"+reports[0].ID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecalculateReport(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)
	reports := generateAndFetchReports(t, router, id)

	working := 15
	rec := doRequest(t, router, http.MethodPut, "/api/reports/"+reports[0].ID, UpdateReportRequest{
		WorkingDays: &working,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/reports/"+reports[0].ID+"/recalculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 15 working at 47.00 + 6 free at 38.00 + 52.90 clothing.
	var out ReportDTO
	decode(t, rec, &out)
	assert.Equal(t, "985.90", out.Total)
}

func TestDeleteReport(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)
	reports := generateAndFetchReports(t, router, id)

	rec := doRequest(t, router, http.MethodDelete, "/api/reports/"+reports[1].ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/reports/"+reports[1].ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Deletion leaves a trace.
	rec = doRequest(t, router, http.MethodGet, "/api/reports/"+reports[1].ID+"/changes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var changes []ChangeEntryDTO
	decode(t, rec, &changes)
	require.Len(t, changes, 1)
	assert.Equal(t, "deleted", changes[0].To)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func TestCreateAssignment_ValidatesSpecification(t *testing.T) {
	st, router := newTestServer(t)
	seedAutumnAssignment(t, st)

	rec := doRequest(t, router, http.MethodPost, "/api/assignments", SaveAssignmentRequest{
		DrudgeID:        "d1",
		SpecificationID: "nope",
		DateFrom:        "2014-11-03",
		DateUntil:       "2014-11-28",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAssignment_StatusTransitionIsLogged(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	rec := doRequest(t, router, http.MethodPut, "/api/assignments/"+id, SaveAssignmentRequest{
		DrudgeID:         "d1",
		SpecificationID:  factory.ProjectAdministration().ID,
		ScopeStatementID: "scope-53378",
		DateFrom:         "2014-09-08",
		DateUntil:        "2014-10-03",
		Status:           "declined",
		MobilizedOn:      "2014-09-08",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out AssignmentDTO
	decode(t, rec, &out)
	assert.Equal(t, "declined", out.Status)

	changes, err := st.ChangesFor(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, "mobilized", changes[0].From)
	assert.Equal(t, "declined", changes[0].To)
}

// =============================================================================
// SCHEDULING
// =============================================================================

func TestGetSchedule_DefaultWindow(t *testing.T) {
	st, router := newTestServer(t)
	seedAutumnAssignment(t, st)

	// Malformed dates fall back to the default window starting at the
	// current week's Monday.
	rec := doRequest(t, router, http.MethodGet, "/api/scheduling?from=garbage&until=2014-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out ScheduleDTO
	decode(t, rec, &out)
	assert.Equal(t, "2014-09-08", out.From)
	require.NotEmpty(t, out.Weeks)
	assert.True(t, out.Weeks[0].IsCurrent)
	require.Len(t, out.Rows, 1)

	// Unscoped grids never carry quota classification.
	assert.Nil(t, out.Weeks[0].Quota)
	assert.Empty(t, out.Weeks[0].Band)
}

func TestGetSchedule_QuotaClassification(t *testing.T) {
	st, router := newTestServer(t)
	seedAutumnAssignment(t, st)

	quotas := []QuotaDTO{{
		ScopeStatementID: "scope-53378",
		Week:             "2014-09-08",
		Value:            3,
	}}
	rec := doRequest(t, router, http.MethodPut, "/api/quotas", quotas)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet,
		"/api/scheduling?from=2014-09-08&until=2014-09-21&scope=scope-53378", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out ScheduleDTO
	decode(t, rec, &out)
	require.Len(t, out.Weeks, 2)

	// One drudge available against a quota of three.
	first := out.Weeks[0]
	require.NotNil(t, first.Quota)
	assert.Equal(t, 3, *first.Quota)
	assert.Equal(t, 1, first.Available)
	assert.Equal(t, 1, first.Net)
	assert.Equal(t, "blue", first.Band)

	// No quota configured for the second week.
	assert.Nil(t, out.Weeks[1].Quota)
}

func TestGetSchedule_QuotasNeedAccommodationRegime(t *testing.T) {
	st, router := newTestServer(t)
	id := seedAutumnAssignment(t, st)

	// Switch the scope's specification to the without-accommodation
	// regime; quota comparison turns off for the whole grid.
	ctx := context.Background()
	a, err := st.GetAssignment(ctx, id)
	require.NoError(t, err)
	spec := factory.ProjectAdministration()
	spec.WithAccommodation = false
	require.NoError(t, st.SaveSpecification(ctx, spec))

	require.NoError(t, st.SaveQuota(ctx, store.Quota{
		ScopeStatementID: a.ScopeStatementID,
		Week:             date(2014, time.September, 8),
		Value:            3,
	}))

	rec := doRequest(t, router, http.MethodGet,
		"/api/scheduling?from=2014-09-08&until=2014-09-21&scope="+a.ScopeStatementID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out ScheduleDTO
	decode(t, rec, &out)
	for _, w := range out.Weeks {
		assert.Nil(t, w.Quota)
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestSeedDefaultHolidays(t *testing.T) {
	_, router := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/holidays/public/defaults", DefaultHolidaysRequest{
		FromYear:  2014,
		UntilYear: 2015,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]int
	decode(t, rec, &out)
	assert.Equal(t, 20, out["saved"])

	rec = doRequest(t, router, http.MethodGet, "/api/holidays/public?from=2014-08-01&until=2014-08-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var holidays []HolidayDTO
	decode(t, rec, &holidays)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Bundesfeier", holidays[0].Name)
}

func TestSeedDefaultHolidays_RejectsBogusRange(t *testing.T) {
	_, router := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/holidays/public/defaults", DefaultHolidaysRequest{
		FromYear:  2015,
		UntilYear: 2014,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyHolidayRoundtrip(t *testing.T) {
	_, router := newTestServer(t)

	rec := doRequest(t, router, http.MethodPost, "/api/holidays/company", CompanyHolidayDTO{
		DateFrom:  "2014-12-25",
		DateUntil: "2015-01-02",
		AppliesTo: []string{"scope-53378"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet,
		"/api/holidays/company?from=2014-12-01&until=2015-01-31&scope=scope-53378", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []CompanyHolidayDTO
	decode(t, rec, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "2014-12-25", out[0].DateFrom)

	// A different scope is unaffected by the closure.
	rec = doRequest(t, router, http.MethodGet,
		"/api/holidays/company?from=2014-12-01&until=2015-01-31&scope=other", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.Empty(t, out)
}

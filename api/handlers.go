/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the HTTP endpoints. Handlers parse/validate input, load the
  materialized domain inputs from the store, call into the pure engine
  packages (assignment, compensation, scheduling) and convert results to
  DTOs. No business rules live here beyond policy checks that belong at
  the edge (paid reports are immutable).

ERROR MAPPING:
  store.ErrNotFound              -> 404
  assignment.ErrReportPaid       -> 409
  assignment.ErrReportExists     -> 409
  compensation.ErrPolicyNotFound -> 409 ("cannot compute expenses yet")
  parse/validation failures      -> 400

AUDIT TRAIL:
  Report edits and assignment status transitions append change-log
  entries. The acting user comes from the X-User header; there is no
  authentication layer, the header is trusted as-is.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Route registration
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
	"github.com/matthiask/zivinetz-sub000/scheduling"
	"github.com/matthiask/zivinetz-sub000/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store store.Store
	now   func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{store: st, now: time.Now}
}

func actor(r *http.Request) string {
	if u := r.Header.Get("X-User"); u != "" {
		return u
	}
	return "anonymous"
}

// =============================================================================
// DRUDGES
// =============================================================================

func (h *Handler) ListDrudges(w http.ResponseWriter, r *http.Request) {
	drudges, err := h.store.ListDrudges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list drudges", err)
		return
	}

	out := make([]DrudgeDTO, 0, len(drudges))
	for _, d := range drudges {
		out = append(out, toDrudgeDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateDrudge(w http.ResponseWriter, r *http.Request) {
	var req SaveDrudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ZDPNo == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "zdp_no and name are required", nil)
		return
	}

	d := assignment.Drudge{
		ID:             uuid.NewString(),
		ZDPNo:          req.ZDPNo,
		Name:           req.Name,
		RegionalOffice: req.RegionalOffice,
	}
	if err := h.store.SaveDrudge(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save drudge", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDrudgeDTO(d))
}

func (h *Handler) GetDrudge(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetDrudge(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "drudge not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load drudge", err)
		return
	}
	writeJSON(w, http.StatusOK, toDrudgeDTO(d))
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter := store.AssignmentFilter{
		ScopeStatementID: r.URL.Query().Get("scope"),
	}
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
		filter.OverlapsFrom = d
	}
	if s := r.URL.Query().Get("until"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date", err)
			return
		}
		filter.OverlapsUntil = d
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := parseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid status", err)
			return
		}
		filter.Statuses = []assignment.Status{status}
	}

	assignments, err := h.store.ListAssignments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignments", err)
		return
	}

	out := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req SaveAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	a, err := req.toAssignment(uuid.NewString())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assignment", err)
		return
	}
	if a.DateUntil.Before(a.DateFrom) {
		writeError(w, http.StatusBadRequest, "date_until must not precede date_from", nil)
		return
	}
	if _, err := h.store.GetSpecification(r.Context(), a.SpecificationID); err != nil {
		writeError(w, http.StatusBadRequest, "unknown specification", err)
		return
	}

	if err := h.store.SaveAssignment(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assignment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(a))
}

// UpdateAssignment replaces the editable fields of an assignment. A status
// transition is recorded in the change log.
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.store.GetAssignment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assignment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}

	var req SaveAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	updated, err := req.toAssignment(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assignment", err)
		return
	}
	if updated.DateUntil.Before(updated.DateFrom) {
		writeError(w, http.StatusBadRequest, "date_until must not precede date_from", nil)
		return
	}

	if err := h.store.SaveAssignment(r.Context(), updated); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save assignment", err)
		return
	}
	if updated.Status != existing.Status {
		entry := assignment.StatusTransitionEntry(updated, existing.Status, actor(r), h.now())
		if err := h.store.AppendChange(r.Context(), entry); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to record status change", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(updated))
}

// =============================================================================
// DAY ACCOUNTING, EXPENSE ESTIMATES & REPORT GENERATION
// =============================================================================

// holidayInputs loads the public and company holidays relevant to one
// assignment's active span.
func (h *Handler) holidayInputs(r *http.Request, a assignment.Assignment) ([]calendar.Holiday, []assignment.CompanyHoliday, error) {
	span := a.ActiveSpan()

	public, err := h.store.PublicHolidaysBetween(r.Context(), span.From, span.Until)
	if err != nil {
		return nil, nil, err
	}
	company, err := h.store.CompanyHolidaysOverlapping(r.Context(), span, a.ScopeStatementID)
	if err != nil {
		return nil, nil, err
	}
	return public, company, nil
}

func (h *Handler) GetAssignmentDays(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assignment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}

	public, company, err := h.holidayInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}

	tally, buckets := assignment.AccountDays(a, public, company)
	writeJSON(w, http.StatusOK, toDaySummaryDTO(tally, buckets))
}

func (h *Handler) GetAssignmentExpenses(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assignment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}

	spec, policies, err := h.compensationInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load compensation data", err)
		return
	}
	public, company, err := h.holidayInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}

	cfg := assignment.AggregatorConfig{}
	if s := r.URL.Query().Get("clothing_budget"); s != "" {
		budget, err := decimal.NewFromString(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid clothing_budget", err)
			return
		}
		cfg.ClothingBudget = &budget
	}

	_, buckets := assignment.AccountDays(a, public, company)
	estimates, err := assignment.Aggregate(buckets, spec, policies, cfg)
	if errors.Is(err, compensation.ErrPolicyNotFound) {
		writeError(w, http.StatusConflict, "cannot compute expenses yet", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, toEstimateDTOs(estimates))
}

func (h *Handler) compensationInputs(r *http.Request, a assignment.Assignment) (compensation.Specification, compensation.PolicySet, error) {
	spec, err := h.store.GetSpecification(r.Context(), a.SpecificationID)
	if err != nil {
		return compensation.Specification{}, nil, err
	}
	policies, err := h.store.ListPolicies(r.Context())
	if err != nil {
		return compensation.Specification{}, nil, err
	}
	return spec, policies, nil
}

func (h *Handler) ListAssignmentReports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetAssignment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "assignment not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}

	reports, err := h.store.ReportsForAssignment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports", err)
		return
	}

	out := make([]ReportDTO, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportDTO(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

// GenerateReports creates the missing expense reports of an assignment.
// Running it again is a no-op for periods that already have a report, so
// it is safe to call after an extension.
func (h *Handler) GenerateReports(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetAssignment(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "assignment not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}

	spec, policies, err := h.compensationInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load compensation data", err)
		return
	}
	public, company, err := h.holidayInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}

	gen := assignment.ReportGenerator{Store: h.store}
	created, err := gen.Generate(r.Context(), assignment.GenerateInput{
		Assignment:      a,
		Specification:   spec,
		Policies:        policies,
		PublicHolidays:  public,
		CompanyHolidays: company,
	})
	if errors.Is(err, compensation.ErrPolicyNotFound) {
		writeError(w, http.StatusConflict, "cannot generate expense reports yet", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate reports", err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateReportsResponse{Created: created})
}

// =============================================================================
// EXPENSE REPORTS
// =============================================================================

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

// UpdateReport applies a partial edit to an expense report. Paid reports
// are immutable. Day counts diverging from the calculated total are
// accepted; the response carries day_count_warning so the client can ask
// for confirmation. Totals are not recomputed here, see RecalculateReport.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report", err)
		return
	}
	if !rep.IsEditable() {
		writeError(w, http.StatusConflict, "report is paid", assignment.ErrReportPaid)
		return
	}

	var req UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	updated := rep
	if err := applyReportEdit(&updated, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid report edit", err)
		return
	}

	if err := h.store.UpdateReport(r.Context(), &updated); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save report", err)
		return
	}
	for _, e := range assignment.DiffReports(&rep, &updated, actor(r), h.now()) {
		if err := h.store.AppendChange(r.Context(), e); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to record change", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toReportDTO(updated))
}

func applyReportEdit(rep *assignment.ExpenseReport, req UpdateReportRequest) error {
	if req.Status != nil {
		status, err := parseReportStatus(*req.Status)
		if err != nil {
			return err
		}
		rep.Status = status
	}

	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&rep.WorkingDays, req.WorkingDays)
	setInt(&rep.FreeDays, req.FreeDays)
	setInt(&rep.SickDays, req.SickDays)
	setInt(&rep.HolidayDays, req.HolidayDays)
	setInt(&rep.ForcedLeaveDays, req.ForcedLeaveDays)
	if rep.WorkingDays < 0 || rep.FreeDays < 0 || rep.SickDays < 0 ||
		rep.HolidayDays < 0 || rep.ForcedLeaveDays < 0 {
		return errors.New("day counts must not be negative")
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&rep.WorkingDaysNotes, req.WorkingDaysNotes)
	setString(&rep.FreeDaysNotes, req.FreeDaysNotes)
	setString(&rep.SickDaysNotes, req.SickDaysNotes)
	setString(&rep.HolidayDaysNotes, req.HolidayDaysNotes)
	setString(&rep.ForcedLeaveDaysNotes, req.ForcedLeaveDaysNotes)
	setString(&rep.ClothingExpensesNotes, req.ClothingExpensesNotes)
	setString(&rep.TransportExpNotes, req.TransportExpNotes)
	setString(&rep.MiscellaneousNotes, req.MiscellaneousNotes)

	setAmount := func(dst *decimal.Decimal, src *string) error {
		if src == nil {
			return nil
		}
		amount, err := decimal.NewFromString(*src)
		if err != nil {
			return err
		}
		*dst = amount
		return nil
	}
	if err := setAmount(&rep.ClothingExpenses, req.ClothingExpenses); err != nil {
		return err
	}
	if err := setAmount(&rep.TransportExpenses, req.TransportExpenses); err != nil {
		return err
	}
	return setAmount(&rep.Miscellaneous, req.Miscellaneous)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report", err)
		return
	}
	if !rep.IsEditable() {
		writeError(w, http.StatusConflict, "report is paid", assignment.ErrReportPaid)
		return
	}

	if err := h.store.DeleteReport(r.Context(), rep.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete report", err)
		return
	}
	entry := assignment.DeletionEntry(&rep, actor(r), h.now())
	if err := h.store.AppendChange(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record deletion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateReport recomputes the report total from the rates in effect
// at the assignment's mobilization date.
func (h *Handler) RecalculateReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.GetReport(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report", err)
		return
	}
	if !rep.IsEditable() {
		writeError(w, http.StatusConflict, "report is paid", assignment.ErrReportPaid)
		return
	}

	a, err := h.store.GetAssignment(r.Context(), rep.AssignmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load assignment", err)
		return
	}
	spec, policies, err := h.compensationInputs(r, a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load compensation data", err)
		return
	}

	before := rep
	if _, err := rep.RecalculateTotal(a, spec, policies); err != nil {
		if errors.Is(err, compensation.ErrPolicyNotFound) {
			writeError(w, http.StatusConflict, "cannot recalculate yet", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to recalculate", err)
		return
	}

	if err := h.store.UpdateReport(r.Context(), &rep); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save report", err)
		return
	}
	for _, e := range assignment.DiffReports(&before, &rep, actor(r), h.now()) {
		if err := h.store.AppendChange(r.Context(), e); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to record change", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toReportDTO(rep))
}

func (h *Handler) GetReportChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.store.ChangesFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load changes", err)
		return
	}

	out := make([]ChangeEntryDTO, 0, len(changes))
	for _, c := range changes {
		out = append(out, ChangeEntryDTO{
			RecordID: c.RecordID,
			At:       c.At.UTC().Format(time.RFC3339),
			Actor:    c.Actor,
			Field:    c.Field,
			From:     c.From,
			To:       c.To,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// SPECIFICATIONS & POLICIES
// =============================================================================

func (h *Handler) ListSpecifications(w http.ResponseWriter, r *http.Request) {
	specs, err := h.store.ListSpecifications(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list specifications", err)
		return
	}

	out := make([]SpecificationDTO, 0, len(specs))
	for _, s := range specs {
		out = append(out, toSpecificationDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SaveSpecification(w http.ResponseWriter, r *http.Request) {
	var dto SpecificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}
	if dto.ScopeStatementID == "" || dto.Code == "" {
		writeError(w, http.StatusBadRequest, "scope_statement_id and code are required", nil)
		return
	}

	spec := dto.toSpecification()
	if err := h.store.SaveSpecification(r.Context(), spec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save specification", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSpecificationDTO(spec))
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list policies", err)
		return
	}

	out := make([]PolicyDTO, 0, len(policies))
	for _, p := range policies {
		out = append(out, toPolicyDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SavePolicy(w http.ResponseWriter, r *http.Request) {
	var dto PolicyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	p, err := dto.toPolicy()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid policy", err)
		return
	}
	if err := h.store.SavePolicy(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPolicyDTO(p))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (h *Handler) ListPublicHolidays(w http.ResponseWriter, r *http.Request) {
	// Default window: the current year.
	today := calendar.FromTime(h.now())
	from := calendar.NewDate(today.Year(), time.January, 1)
	until := calendar.NewDate(today.Year(), time.December, 31)

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
		from = d
	}
	if s := r.URL.Query().Get("until"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date", err)
			return
		}
		until = d
	}

	holidays, err := h.store.PublicHolidaysBetween(r.Context(), from, until)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list holidays", err)
		return
	}

	out := make([]HolidayDTO, 0, len(holidays))
	for _, hd := range holidays {
		out = append(out, HolidayDTO{Date: hd.Date.String(), Name: hd.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SavePublicHoliday(w http.ResponseWriter, r *http.Request) {
	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	d, err := calendar.ParseDate(dto.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	holiday := calendar.Holiday{Date: d, Name: dto.Name}
	if err := h.store.SavePublicHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{Date: d.String(), Name: dto.Name})
}

func (h *Handler) DeletePublicHoliday(w http.ResponseWriter, r *http.Request) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	err = h.store.DeletePublicHoliday(r.Context(), d)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "holiday not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedDefaultHolidays loads the Swiss national holidays for a year range.
// Existing entries are upserted by date, so re-seeding is harmless.
func (h *Handler) SeedDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	var req DefaultHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.FromYear < 1900 || req.UntilYear < req.FromYear || req.UntilYear-req.FromYear > 100 {
		writeError(w, http.StatusBadRequest, "invalid year range", nil)
		return
	}

	saved := 0
	for year := req.FromYear; year <= req.UntilYear; year++ {
		for _, holiday := range calendar.SwissPublicHolidays(year) {
			if err := h.store.SavePublicHoliday(r.Context(), holiday); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to save holiday", err)
				return
			}
			saved++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": saved})
}

func (h *Handler) ListCompanyHolidays(w http.ResponseWriter, r *http.Request) {
	// Default window: a generous span around today.
	today := calendar.FromTime(h.now())
	window := calendar.Period{
		From:  today.AddYears(-1),
		Until: today.AddYears(1),
	}

	if s := r.URL.Query().Get("from"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date", err)
			return
		}
		window.From = d
	}
	if s := r.URL.Query().Get("until"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid until date", err)
			return
		}
		window.Until = d
	}

	holidays, err := h.store.CompanyHolidaysOverlapping(r.Context(), window, r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list company holidays", err)
		return
	}

	out := make([]CompanyHolidayDTO, 0, len(holidays))
	for _, ch := range holidays {
		out = append(out, toCompanyHolidayDTO(ch))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SaveCompanyHoliday(w http.ResponseWriter, r *http.Request) {
	var dto CompanyHolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	from, err := calendar.ParseDate(dto.DateFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_from", err)
		return
	}
	until, err := calendar.ParseDate(dto.DateUntil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date_until", err)
		return
	}
	if until.Before(from) {
		writeError(w, http.StatusBadRequest, "date_until must not precede date_from", nil)
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}

	ch := assignment.CompanyHoliday{
		ID:        dto.ID,
		Period:    calendar.Period{From: from, Until: until},
		AppliesTo: dto.AppliesTo,
	}
	if err := h.store.SaveCompanyHoliday(r.Context(), ch); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save company holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyHolidayDTO(ch))
}

// =============================================================================
// QUOTAS & SCHEDULING
// =============================================================================

func (h *Handler) SaveQuotas(w http.ResponseWriter, r *http.Request) {
	var dtos []QuotaDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	for _, dto := range dtos {
		if dto.ScopeStatementID == "" {
			writeError(w, http.StatusBadRequest, "scope_statement_id is required", nil)
			return
		}
		q, err := dto.toQuota()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid quota", err)
			return
		}
		if err := h.store.SaveQuota(r.Context(), q); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save quota", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(dtos)})
}

// GetSchedule returns the classified weekly scheduling grid. Missing or
// malformed window dates fall back to a default window starting at the
// current week's Monday and spanning 35 weeks.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	today := calendar.FromTime(h.now())

	window := calendar.Period{From: calendar.MondayOf(today)}
	window.Until = window.From.AddDays(35*7 + 4)

	// An incomplete or malformed window falls back to the default as a
	// whole, never half of each.
	from, errFrom := calendar.ParseDate(r.URL.Query().Get("from"))
	until, errUntil := calendar.ParseDate(r.URL.Query().Get("until"))
	if errFrom == nil && errUntil == nil && !until.Before(from) {
		window = calendar.Period{From: from, Until: until}
	}

	scope := r.URL.Query().Get("scope")
	assignments, err := h.store.ListAssignments(r.Context(), store.AssignmentFilter{
		OverlapsFrom:     window.From,
		OverlapsUntil:    window.Until,
		ScopeStatementID: scope,
		Statuses: []assignment.Status{
			assignment.StatusTentative,
			assignment.StatusArranged,
			assignment.StatusMobilized,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignments", err)
		return
	}

	quotas, err := h.scheduleQuotas(r, scope, window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quotas", err)
		return
	}

	grid := scheduling.BuildGrid(scheduling.Input{
		Window:      window,
		Assignments: assignments,
		Quotas:      quotas,
		Today:       today,
	})
	writeJSON(w, http.StatusOK, toScheduleDTO(window, grid))
}

// scheduleQuotas loads the weekly quotas for the scheduling grid. Quotas
// only exist for the with-accommodation regime: without a scope filter, or
// when the scope has no with-accommodation specification, comparison is
// disabled entirely (nil map).
func (h *Handler) scheduleQuotas(r *http.Request, scope string, window calendar.Period) (map[calendar.Date]int, error) {
	if scope == "" {
		return nil, nil
	}

	specs, err := h.store.ListSpecifications(r.Context())
	if err != nil {
		return nil, err
	}
	withAccommodation := false
	for _, s := range specs {
		if s.ScopeStatementID == scope && s.WithAccommodation {
			withAccommodation = true
			break
		}
	}
	if !withAccommodation {
		return nil, nil
	}

	return h.store.QuotasBetween(r.Context(), scope, calendar.MondayOf(window.From), window.Until)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a standardized error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

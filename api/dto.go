/*
dto.go - Data Transfer Objects for API requests/responses

PURPOSE:
  Defines the JSON structures exchanged with clients, decoupled from the
  domain types. Dates travel as "YYYY-MM-DD" strings (empty when unset),
  money as fixed two-decimal strings, statuses as their lowercase names.

NAMING CONVENTION:
  *DTO     - response objects
  *Request - request bodies

SEE ALSO:
  - handlers.go: Converts between domain types and DTOs
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
	"github.com/matthiask/zivinetz-sub000/scheduling"
	"github.com/matthiask/zivinetz-sub000/store"
)

// ErrorResponse is the standard error format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DRUDGES
// =============================================================================

type DrudgeDTO struct {
	ID             string `json:"id"`
	ZDPNo          string `json:"zdp_no"`
	Name           string `json:"name"`
	RegionalOffice string `json:"regional_office"`
}

type SaveDrudgeRequest struct {
	ZDPNo          string `json:"zdp_no"`
	Name           string `json:"name"`
	RegionalOffice string `json:"regional_office"`
}

func toDrudgeDTO(d assignment.Drudge) DrudgeDTO {
	return DrudgeDTO{
		ID:             d.ID,
		ZDPNo:          d.ZDPNo,
		Name:           d.Name,
		RegionalOffice: d.RegionalOffice,
	}
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

type AssignmentDTO struct {
	ID               string `json:"id"`
	DrudgeID         string `json:"drudge_id"`
	SpecificationID  string `json:"specification_id"`
	ScopeStatementID string `json:"scope_statement_id"`

	DateFrom           string `json:"date_from"`
	DateUntil          string `json:"date_until"`
	DateUntilExtension string `json:"date_until_extension,omitempty"`

	PartOfLongAssignment bool `json:"part_of_long_assignment"`

	Status      string `json:"status"`
	ArrangedOn  string `json:"arranged_on,omitempty"`
	MobilizedOn string `json:"mobilized_on,omitempty"`

	EnvironmentCourseDate string `json:"environment_course_date,omitempty"`
	MotorSawCourseDate    string `json:"motor_saw_course_date,omitempty"`
}

type SaveAssignmentRequest struct {
	DrudgeID         string `json:"drudge_id"`
	SpecificationID  string `json:"specification_id"`
	ScopeStatementID string `json:"scope_statement_id"`

	DateFrom           string `json:"date_from"`
	DateUntil          string `json:"date_until"`
	DateUntilExtension string `json:"date_until_extension"`

	PartOfLongAssignment bool `json:"part_of_long_assignment"`

	Status      string `json:"status"`
	ArrangedOn  string `json:"arranged_on"`
	MobilizedOn string `json:"mobilized_on"`

	EnvironmentCourseDate string `json:"environment_course_date"`
	MotorSawCourseDate    string `json:"motor_saw_course_date"`
}

func toAssignmentDTO(a assignment.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:                    a.ID,
		DrudgeID:              a.DrudgeID,
		SpecificationID:       a.SpecificationID,
		ScopeStatementID:      a.ScopeStatementID,
		DateFrom:              dateString(a.DateFrom),
		DateUntil:             dateString(a.DateUntil),
		DateUntilExtension:    dateString(a.DateUntilExtension),
		PartOfLongAssignment:  a.PartOfLongAssignment,
		Status:                a.Status.String(),
		ArrangedOn:            dateString(a.ArrangedOn),
		MobilizedOn:           dateString(a.MobilizedOn),
		EnvironmentCourseDate: dateString(a.EnvironmentCourseDate),
		MotorSawCourseDate:    dateString(a.MotorSawCourseDate),
	}
}

func (req SaveAssignmentRequest) toAssignment(id string) (assignment.Assignment, error) {
	a := assignment.Assignment{
		ID:                   id,
		DrudgeID:             req.DrudgeID,
		SpecificationID:      req.SpecificationID,
		ScopeStatementID:     req.ScopeStatementID,
		PartOfLongAssignment: req.PartOfLongAssignment,
	}

	var err error
	if a.Status, err = parseStatus(req.Status); err != nil {
		return a, err
	}
	if req.DateFrom == "" || req.DateUntil == "" {
		return a, fmt.Errorf("date_from and date_until are required")
	}
	dates := []struct {
		dst   *calendar.Date
		value string
	}{
		{&a.DateFrom, req.DateFrom},
		{&a.DateUntil, req.DateUntil},
		{&a.DateUntilExtension, req.DateUntilExtension},
		{&a.ArrangedOn, req.ArrangedOn},
		{&a.MobilizedOn, req.MobilizedOn},
		{&a.EnvironmentCourseDate, req.EnvironmentCourseDate},
		{&a.MotorSawCourseDate, req.MotorSawCourseDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if *d.dst, err = calendar.ParseDate(d.value); err != nil {
			return a, err
		}
	}
	return a, nil
}

func parseStatus(s string) (assignment.Status, error) {
	switch s {
	case "", "tentative":
		return assignment.StatusTentative, nil
	case "arranged":
		return assignment.StatusArranged, nil
	case "mobilized":
		return assignment.StatusMobilized, nil
	case "declined":
		return assignment.StatusDeclined, nil
	}
	return 0, fmt.Errorf("unknown assignment status %q", s)
}

// =============================================================================
// DAY ACCOUNTING & EXPENSE ESTIMATES
// =============================================================================

type TallyDTO struct {
	AssignmentDays                       int `json:"assignment_days"`
	VacationDays                         int `json:"vacation_days"`
	CompanyHolidayDays                   int `json:"company_holiday_days"`
	PublicHolidaysDuringCompanyHolidays  int `json:"public_holidays_during_company_holidays"`
	PublicHolidaysOutsideCompanyHolidays int `json:"public_holidays_outside_company_holidays"`
	VacationDaysDuringCompanyHolidays    int `json:"vacation_days_during_company_holidays"`
	RemainingVacationDays                int `json:"remaining_vacation_days"`
	WorkingDays                          int `json:"working_days"`
	CountableDays                        int `json:"countable_days"`
	ForcedLeaveDays                      int `json:"forced_leave_days"`
}

type BucketDTO struct {
	Period      string `json:"period"`
	FreeDays    int    `json:"free_days"`
	WorkingDays int    `json:"working_days"`
	ForcedDays  int    `json:"forced_leave_days"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

type DaySummaryDTO struct {
	Tally   TallyDTO    `json:"tally"`
	Buckets []BucketDTO `json:"buckets"`
}

func toDaySummaryDTO(tally assignment.Tally, buckets []assignment.MonthBucket) DaySummaryDTO {
	out := DaySummaryDTO{
		Tally: TallyDTO{
			AssignmentDays:                       tally.AssignmentDays,
			VacationDays:                         tally.VacationDays,
			CompanyHolidayDays:                   tally.CompanyHolidayDays,
			PublicHolidaysDuringCompanyHolidays:  tally.PublicHolidaysDuringCompanyHolidays,
			PublicHolidaysOutsideCompanyHolidays: tally.PublicHolidaysOutsideCompanyHolidays,
			VacationDaysDuringCompanyHolidays:    tally.VacationDaysDuringCompanyHolidays,
			RemainingVacationDays:                tally.RemainingVacationDays,
			WorkingDays:                          tally.WorkingDays,
			CountableDays:                        tally.CountableDays,
			ForcedLeaveDays:                      tally.ForcedLeaveDays,
		},
		Buckets: make([]BucketDTO, 0, len(buckets)),
	}
	for _, b := range buckets {
		out.Buckets = append(out.Buckets, BucketDTO{
			Period:      b.Key.Date().String(),
			FreeDays:    b.Free,
			WorkingDays: b.Working,
			ForcedDays:  b.Forced,
			Start:       dateString(b.Start),
			End:         dateString(b.End),
		})
	}
	return out
}

type EstimateDTO struct {
	Period        string `json:"period"`
	SpendingMoney string `json:"spending_money"`
	Clothing      string `json:"clothing"`
	Accommodation string `json:"accommodation"`
	Food          string `json:"food"`
	Total         string `json:"total"`
}

func toEstimateDTOs(estimates []assignment.MonthlyEstimate) []EstimateDTO {
	out := make([]EstimateDTO, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, EstimateDTO{
			Period:        e.Key.Date().String(),
			SpendingMoney: moneyString(e.SpendingMoney),
			Clothing:      moneyString(e.Clothing),
			Accommodation: moneyString(e.Accommodation),
			Food:          moneyString(e.Food),
			Total:         moneyString(e.Total()),
		})
	}
	return out
}

// =============================================================================
// EXPENSE REPORTS
// =============================================================================

type ReportDTO struct {
	ID              string `json:"id"`
	AssignmentID    string `json:"assignment_id"`
	SpecificationID string `json:"specification_id"`

	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	ReportNo    string `json:"report_no"`

	Status string `json:"status"`

	WorkingDays     int `json:"working_days"`
	FreeDays        int `json:"free_days"`
	SickDays        int `json:"sick_days"`
	HolidayDays     int `json:"holiday_days"`
	ForcedLeaveDays int `json:"forced_leave_days"`

	WorkingDaysNotes     string `json:"working_days_notes,omitempty"`
	FreeDaysNotes        string `json:"free_days_notes,omitempty"`
	SickDaysNotes        string `json:"sick_days_notes,omitempty"`
	HolidayDaysNotes     string `json:"holiday_days_notes,omitempty"`
	ForcedLeaveDaysNotes string `json:"forced_leave_days_notes,omitempty"`

	CalculatedTotalDays int  `json:"calculated_total_days"`
	TotalDays           int  `json:"total_days"`
	DayCountWarning     bool `json:"day_count_warning"`
	Editable            bool `json:"editable"`

	ClothingExpenses      string `json:"clothing_expenses"`
	ClothingExpensesNotes string `json:"clothing_expenses_notes,omitempty"`
	TransportExpenses     string `json:"transport_expenses"`
	TransportExpNotes     string `json:"transport_expenses_notes,omitempty"`
	Miscellaneous         string `json:"miscellaneous"`
	MiscellaneousNotes    string `json:"miscellaneous_notes,omitempty"`

	Total string `json:"total"`
}

func toReportDTO(r assignment.ExpenseReport) ReportDTO {
	return ReportDTO{
		ID:                    r.ID,
		AssignmentID:          r.AssignmentID,
		SpecificationID:       r.SpecificationID,
		PeriodStart:           dateString(r.PeriodStart),
		PeriodEnd:             dateString(r.PeriodEnd),
		ReportNo:              r.ReportNo,
		Status:                r.Status.String(),
		WorkingDays:           r.WorkingDays,
		FreeDays:              r.FreeDays,
		SickDays:              r.SickDays,
		HolidayDays:           r.HolidayDays,
		ForcedLeaveDays:       r.ForcedLeaveDays,
		WorkingDaysNotes:      r.WorkingDaysNotes,
		FreeDaysNotes:         r.FreeDaysNotes,
		SickDaysNotes:         r.SickDaysNotes,
		HolidayDaysNotes:      r.HolidayDaysNotes,
		ForcedLeaveDaysNotes:  r.ForcedLeaveDaysNotes,
		CalculatedTotalDays:   r.CalculatedTotalDays,
		TotalDays:             r.TotalDays(),
		DayCountWarning:       r.DayCountWarning(),
		Editable:              r.IsEditable(),
		ClothingExpenses:      moneyString(r.ClothingExpenses),
		ClothingExpensesNotes: r.ClothingExpensesNotes,
		TransportExpenses:     moneyString(r.TransportExpenses),
		TransportExpNotes:     r.TransportExpNotes,
		Miscellaneous:         moneyString(r.Miscellaneous),
		MiscellaneousNotes:    r.MiscellaneousNotes,
		Total:                 moneyString(r.Total),
	}
}

// UpdateReportRequest carries a partial edit; nil fields stay unchanged.
// CalculatedTotalDays and Total are not client-writable.
type UpdateReportRequest struct {
	Status *string `json:"status"`

	WorkingDays     *int `json:"working_days"`
	FreeDays        *int `json:"free_days"`
	SickDays        *int `json:"sick_days"`
	HolidayDays     *int `json:"holiday_days"`
	ForcedLeaveDays *int `json:"forced_leave_days"`

	WorkingDaysNotes     *string `json:"working_days_notes"`
	FreeDaysNotes        *string `json:"free_days_notes"`
	SickDaysNotes        *string `json:"sick_days_notes"`
	HolidayDaysNotes     *string `json:"holiday_days_notes"`
	ForcedLeaveDaysNotes *string `json:"forced_leave_days_notes"`

	ClothingExpenses      *string `json:"clothing_expenses"`
	ClothingExpensesNotes *string `json:"clothing_expenses_notes"`
	TransportExpenses     *string `json:"transport_expenses"`
	TransportExpNotes     *string `json:"transport_expenses_notes"`
	Miscellaneous         *string `json:"miscellaneous"`
	MiscellaneousNotes    *string `json:"miscellaneous_notes"`
}

func parseReportStatus(s string) (assignment.ReportStatus, error) {
	switch s {
	case "pending":
		return assignment.ReportPending, nil
	case "filled":
		return assignment.ReportFilled, nil
	case "paid":
		return assignment.ReportPaid, nil
	}
	return 0, fmt.Errorf("unknown report status %q", s)
}

type GenerateReportsResponse struct {
	Created int `json:"created"`
}

type ChangeEntryDTO struct {
	RecordID string `json:"record_id"`
	At       string `json:"at"`
	Actor    string `json:"actor"`
	Field    string `json:"field,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
}

// =============================================================================
// SPECIFICATIONS & POLICIES
// =============================================================================

type DayRulesDTO struct {
	Accommodation string `json:"accommodation"`
	Breakfast     string `json:"breakfast"`
	Lunch         string `json:"lunch"`
	Supper        string `json:"supper"`
}

type SpecificationDTO struct {
	ID               string `json:"id"`
	ScopeStatementID string `json:"scope_statement_id"`
	Code             string `json:"code"`

	WithAccommodation bool `json:"with_accommodation"`

	Working DayRulesDTO `json:"working"`
	Sick    DayRulesDTO `json:"sick"`
	Free    DayRulesDTO `json:"free"`

	Clothing string `json:"clothing"`
}

func toDayRulesDTO(r compensation.DayRules) DayRulesDTO {
	return DayRulesDTO{
		Accommodation: string(r.Accommodation),
		Breakfast:     string(r.Breakfast),
		Lunch:         string(r.Lunch),
		Supper:        string(r.Supper),
	}
}

func (d DayRulesDTO) toDayRules() compensation.DayRules {
	return compensation.DayRules{
		Accommodation: compensation.AccommodationRule(d.Accommodation),
		Breakfast:     compensation.MealRule(d.Breakfast),
		Lunch:         compensation.MealRule(d.Lunch),
		Supper:        compensation.MealRule(d.Supper),
	}
}

func toSpecificationDTO(s compensation.Specification) SpecificationDTO {
	return SpecificationDTO{
		ID:                s.ID,
		ScopeStatementID:  s.ScopeStatementID,
		Code:              s.Code,
		WithAccommodation: s.WithAccommodation,
		Working:           toDayRulesDTO(s.Working),
		Sick:              toDayRulesDTO(s.Sick),
		Free:              toDayRulesDTO(s.Free),
		Clothing:          string(s.Clothing),
	}
}

func (d SpecificationDTO) toSpecification() compensation.Specification {
	return compensation.Specification{
		ID:                d.ID,
		ScopeStatementID:  d.ScopeStatementID,
		Code:              d.Code,
		WithAccommodation: d.WithAccommodation,
		Working:           d.Working.toDayRules(),
		Sick:              d.Sick.toDayRules(),
		Free:              d.Free.toDayRules(),
		Clothing:          compensation.ClothingRule(d.Clothing),
	}
}

type PolicyDTO struct {
	EffectiveFrom string `json:"effective_from"`

	SpendingMoney string `json:"spending_money"`

	BreakfastAtAccommodation string `json:"breakfast_at_accommodation"`
	LunchAtAccommodation     string `json:"lunch_at_accommodation"`
	SupperAtAccommodation    string `json:"supper_at_accommodation"`

	BreakfastExternal string `json:"breakfast_external"`
	LunchExternal     string `json:"lunch_external"`
	SupperExternal    string `json:"supper_external"`

	AccommodationHome     string `json:"accommodation_home"`
	PrivateTransportPerKm string `json:"private_transport_per_km"`

	Clothing                   string `json:"clothing"`
	ClothingLimitPerAssignment string `json:"clothing_limit_per_assignment"`
}

func toPolicyDTO(p compensation.Policy) PolicyDTO {
	return PolicyDTO{
		EffectiveFrom:              p.EffectiveFrom.String(),
		SpendingMoney:              moneyString(p.SpendingMoney),
		BreakfastAtAccommodation:   moneyString(p.BreakfastAtAccommodation),
		LunchAtAccommodation:       moneyString(p.LunchAtAccommodation),
		SupperAtAccommodation:      moneyString(p.SupperAtAccommodation),
		BreakfastExternal:          moneyString(p.BreakfastExternal),
		LunchExternal:              moneyString(p.LunchExternal),
		SupperExternal:             moneyString(p.SupperExternal),
		AccommodationHome:          moneyString(p.AccommodationHome),
		PrivateTransportPerKm:      moneyString(p.PrivateTransportPerKm),
		Clothing:                   moneyString(p.Clothing),
		ClothingLimitPerAssignment: moneyString(p.ClothingLimitPerAssignment),
	}
}

func (d PolicyDTO) toPolicy() (compensation.Policy, error) {
	p := compensation.Policy{}

	var err error
	if p.EffectiveFrom, err = calendar.ParseDate(d.EffectiveFrom); err != nil {
		return p, err
	}
	amounts := []struct {
		dst   *decimal.Decimal
		value string
	}{
		{&p.SpendingMoney, d.SpendingMoney},
		{&p.BreakfastAtAccommodation, d.BreakfastAtAccommodation},
		{&p.LunchAtAccommodation, d.LunchAtAccommodation},
		{&p.SupperAtAccommodation, d.SupperAtAccommodation},
		{&p.BreakfastExternal, d.BreakfastExternal},
		{&p.LunchExternal, d.LunchExternal},
		{&p.SupperExternal, d.SupperExternal},
		{&p.AccommodationHome, d.AccommodationHome},
		{&p.PrivateTransportPerKm, d.PrivateTransportPerKm},
		{&p.Clothing, d.Clothing},
		{&p.ClothingLimitPerAssignment, d.ClothingLimitPerAssignment},
	}
	for _, a := range amounts {
		if a.value == "" {
			continue
		}
		if *a.dst, err = decimal.NewFromString(a.value); err != nil {
			return p, err
		}
	}
	return p, nil
}

// =============================================================================
// HOLIDAYS & QUOTAS
// =============================================================================

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type DefaultHolidaysRequest struct {
	FromYear  int `json:"from_year"`
	UntilYear int `json:"until_year"`
}

type CompanyHolidayDTO struct {
	ID        string   `json:"id"`
	DateFrom  string   `json:"date_from"`
	DateUntil string   `json:"date_until"`
	AppliesTo []string `json:"applies_to"`
}

func toCompanyHolidayDTO(ch assignment.CompanyHoliday) CompanyHolidayDTO {
	return CompanyHolidayDTO{
		ID:        ch.ID,
		DateFrom:  ch.Period.From.String(),
		DateUntil: ch.Period.Until.String(),
		AppliesTo: ch.AppliesTo,
	}
}

type QuotaDTO struct {
	ScopeStatementID string `json:"scope_statement_id"`
	Week             string `json:"week"`
	Value            int    `json:"value"`
}

func (d QuotaDTO) toQuota() (store.Quota, error) {
	week, err := calendar.ParseDate(d.Week)
	if err != nil {
		return store.Quota{}, err
	}
	return store.Quota{
		ScopeStatementID: d.ScopeStatementID,
		Week:             calendar.MondayOf(week),
		Value:            d.Value,
	}, nil
}

// =============================================================================
// SCHEDULING GRID
// =============================================================================

type WeekDTO struct {
	Monday    string `json:"monday"`
	Year      int    `json:"year"`
	Week      int    `json:"week"`
	IsCurrent bool   `json:"is_current"`

	Available      int    `json:"available"`
	CourseAbsences int    `json:"course_absences"`
	Net            int    `json:"net"`
	ActiveDays     int    `json:"active_days"`
	Quota          *int   `json:"quota,omitempty"`
	Band           string `json:"band,omitempty"`
}

type CellDTO struct {
	Active   bool `json:"active"`
	Days     int  `json:"days"`
	StartDay int  `json:"start_day,omitempty"`
	EndDay   int  `json:"end_day,omitempty"`
	Course   bool `json:"course,omitempty"`
}

type RowDTO struct {
	Assignment AssignmentDTO `json:"assignment"`
	Cells      []CellDTO     `json:"cells"`
}

type ScheduleDTO struct {
	From  string `json:"from"`
	Until string `json:"until"`

	AverageDaysPerWeek float64 `json:"average_days_per_week"`

	Weeks []WeekDTO `json:"weeks"`
	Rows  []RowDTO  `json:"rows"`
}

func toScheduleDTO(window calendar.Period, grid scheduling.Grid) ScheduleDTO {
	out := ScheduleDTO{
		From:               window.From.String(),
		Until:              window.Until.String(),
		AverageDaysPerWeek: grid.AverageDaysPerWeek(),
		Weeks:              make([]WeekDTO, 0, len(grid.Weeks)),
		Rows:               make([]RowDTO, 0, len(grid.Rows)),
	}
	for _, w := range grid.Weeks {
		out.Weeks = append(out.Weeks, WeekDTO{
			Monday:         w.Week.Monday.String(),
			Year:           w.Week.Year,
			Week:           w.Week.Week,
			IsCurrent:      w.Week.IsCurrent,
			Available:      w.Available,
			CourseAbsences: w.CourseAbsences,
			Net:            w.Net,
			ActiveDays:     w.ActiveDays,
			Quota:          w.Quota,
			Band:           w.Band.String(),
		})
	}
	for _, row := range grid.Rows {
		cells := make([]CellDTO, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, CellDTO{
				Active:   c.Active,
				Days:     c.Days,
				StartDay: c.StartDay,
				EndDay:   c.EndDay,
				Course:   c.Course,
			})
		}
		out.Rows = append(out.Rows, RowDTO{
			Assignment: toAssignmentDTO(row.Assignment),
			Cells:      cells,
		})
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func dateString(d calendar.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func moneyString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

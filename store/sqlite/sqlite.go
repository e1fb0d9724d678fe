/*
Package sqlite provides the SQLite-backed implementation of store.Store.

PURPOSE:
  Persists drudges, assignments, specifications, compensation policies,
  holidays, expense reports, quotas and the report change log. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  assignments:      One row per work engagement
  expense_reports:  Generated/edited monthly reports
  policies:         Federal compensation rate sets, keyed by effective date
  drudge_quotas:    Target weekly headcounts per scope statement

UNIQUENESS BACKSTOP:
  UNIQUE(assignment_id, period_start) on expense_reports guarantees that
  two concurrent report generation runs cannot both insert a report for
  the same period; the loser gets assignment.ErrReportExists and skips.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/zivinetz.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/matthiask/zivinetz-sub000/assignment"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/compensation"
	"github.com/matthiask/zivinetz-sub000/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drudges (
		id TEXT PRIMARY KEY,
		zdp_no TEXT NOT NULL,
		name TEXT NOT NULL,
		regional_office TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS specifications (
		id TEXT PRIMARY KEY,
		scope_statement_id TEXT NOT NULL,
		code TEXT NOT NULL,
		with_accommodation BOOLEAN NOT NULL,
		working_accommodation TEXT NOT NULL,
		working_breakfast TEXT NOT NULL,
		working_lunch TEXT NOT NULL,
		working_supper TEXT NOT NULL,
		sick_accommodation TEXT NOT NULL,
		sick_breakfast TEXT NOT NULL,
		sick_lunch TEXT NOT NULL,
		sick_supper TEXT NOT NULL,
		free_accommodation TEXT NOT NULL,
		free_breakfast TEXT NOT NULL,
		free_lunch TEXT NOT NULL,
		free_supper TEXT NOT NULL,
		clothing TEXT NOT NULL,
		UNIQUE(scope_statement_id, with_accommodation)
	);

	CREATE TABLE IF NOT EXISTS policies (
		effective_from TEXT PRIMARY KEY,
		spending_money TEXT NOT NULL,
		breakfast_at_accommodation TEXT NOT NULL,
		lunch_at_accommodation TEXT NOT NULL,
		supper_at_accommodation TEXT NOT NULL,
		breakfast_external TEXT NOT NULL,
		lunch_external TEXT NOT NULL,
		supper_external TEXT NOT NULL,
		accommodation_home TEXT NOT NULL,
		private_transport_per_km TEXT NOT NULL,
		clothing TEXT NOT NULL,
		clothing_limit_per_assignment TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		drudge_id TEXT NOT NULL,
		specification_id TEXT NOT NULL,
		scope_statement_id TEXT NOT NULL,
		date_from TEXT NOT NULL,
		date_until TEXT NOT NULL,
		date_until_extension TEXT,
		part_of_long_assignment BOOLEAN NOT NULL DEFAULT FALSE,
		status INTEGER NOT NULL,
		arranged_on TEXT,
		mobilized_on TEXT,
		environment_course_date TEXT,
		motor_saw_course_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_drudge
		ON assignments(drudge_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_range
		ON assignments(date_from, date_until);

	CREATE TABLE IF NOT EXISTS public_holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS company_holidays (
		id TEXT PRIMARY KEY,
		date_from TEXT NOT NULL,
		date_until TEXT NOT NULL,
		applies_to_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS expense_reports (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL,
		specification_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		report_no TEXT NOT NULL,
		status INTEGER NOT NULL,
		working_days INTEGER NOT NULL DEFAULT 0,
		free_days INTEGER NOT NULL DEFAULT 0,
		sick_days INTEGER NOT NULL DEFAULT 0,
		holiday_days INTEGER NOT NULL DEFAULT 0,
		forced_leave_days INTEGER NOT NULL DEFAULT 0,
		working_days_notes TEXT NOT NULL DEFAULT '',
		free_days_notes TEXT NOT NULL DEFAULT '',
		sick_days_notes TEXT NOT NULL DEFAULT '',
		holiday_days_notes TEXT NOT NULL DEFAULT '',
		forced_leave_days_notes TEXT NOT NULL DEFAULT '',
		calculated_total_days INTEGER NOT NULL DEFAULT 0,
		clothing_expenses TEXT NOT NULL,
		clothing_expenses_notes TEXT NOT NULL DEFAULT '',
		transport_expenses TEXT NOT NULL,
		transport_expenses_notes TEXT NOT NULL DEFAULT '',
		miscellaneous TEXT NOT NULL,
		miscellaneous_notes TEXT NOT NULL DEFAULT '',
		total TEXT NOT NULL,
		UNIQUE(assignment_id, period_start)
	);

	CREATE INDEX IF NOT EXISTS idx_reports_assignment
		ON expense_reports(assignment_id);

	CREATE TABLE IF NOT EXISTS drudge_quotas (
		scope_statement_id TEXT NOT NULL,
		week TEXT NOT NULL,
		quota INTEGER NOT NULL,
		UNIQUE(scope_statement_id, week)
	);

	CREATE TABLE IF NOT EXISTS change_log (
		record_id TEXT NOT NULL,
		changed_at TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		field TEXT NOT NULL DEFAULT '',
		from_value TEXT NOT NULL DEFAULT '',
		to_value TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_change_log_record
		ON change_log(record_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DRUDGES
// =============================================================================

func (s *Store) SaveDrudge(ctx context.Context, d assignment.Drudge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO drudges (id, zdp_no, name, regional_office)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			zdp_no = excluded.zdp_no,
			name = excluded.name,
			regional_office = excluded.regional_office
	`

	_, err := s.db.ExecContext(ctx, query, d.ID, d.ZDPNo, d.Name, d.RegionalOffice)
	return err
}

func (s *Store) GetDrudge(ctx context.Context, id string) (assignment.Drudge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d assignment.Drudge
	err := s.db.QueryRowContext(ctx,
		"SELECT id, zdp_no, name, regional_office FROM drudges WHERE id = ?", id,
	).Scan(&d.ID, &d.ZDPNo, &d.Name, &d.RegionalOffice)

	if err == sql.ErrNoRows {
		return assignment.Drudge{}, store.ErrNotFound
	}
	return d, err
}

func (s *Store) ListDrudges(ctx context.Context) ([]assignment.Drudge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, zdp_no, name, regional_office FROM drudges ORDER BY zdp_no")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drudges []assignment.Drudge
	for rows.Next() {
		var d assignment.Drudge
		if err := rows.Scan(&d.ID, &d.ZDPNo, &d.Name, &d.RegionalOffice); err != nil {
			return nil, err
		}
		drudges = append(drudges, d)
	}
	return drudges, rows.Err()
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assignments
		(id, drudge_id, specification_id, scope_statement_id, date_from, date_until,
		 date_until_extension, part_of_long_assignment, status, arranged_on,
		 mobilized_on, environment_course_date, motor_saw_course_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			drudge_id = excluded.drudge_id,
			specification_id = excluded.specification_id,
			scope_statement_id = excluded.scope_statement_id,
			date_from = excluded.date_from,
			date_until = excluded.date_until,
			date_until_extension = excluded.date_until_extension,
			part_of_long_assignment = excluded.part_of_long_assignment,
			status = excluded.status,
			arranged_on = excluded.arranged_on,
			mobilized_on = excluded.mobilized_on,
			environment_course_date = excluded.environment_course_date,
			motor_saw_course_date = excluded.motor_saw_course_date
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.DrudgeID, a.SpecificationID, a.ScopeStatementID,
		a.DateFrom.String(), a.DateUntil.String(),
		nullDate(a.DateUntilExtension),
		a.PartOfLongAssignment,
		int(a.Status),
		nullDate(a.ArrangedOn),
		nullDate(a.MobilizedOn),
		nullDate(a.EnvironmentCourseDate),
		nullDate(a.MotorSawCourseDate),
	)
	return err
}

func (s *Store) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectAssignments + " WHERE id = ?"
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return assignment.Assignment{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assignment.Assignment{}, err
		}
		return assignment.Assignment{}, store.ErrNotFound
	}
	return scanAssignment(rows)
}

func (s *Store) ListAssignments(ctx context.Context, f store.AssignmentFilter) ([]assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectAssignments
	var where []string
	var args []any

	if f.ScopeStatementID != "" {
		where = append(where, "scope_statement_id = ?")
		args = append(args, f.ScopeStatementID)
	}
	if !f.OverlapsFrom.IsZero() {
		// The extension end wins when present.
		where = append(where, "COALESCE(date_until_extension, date_until) >= ?")
		args = append(args, f.OverlapsFrom.String())
	}
	if !f.OverlapsUntil.IsZero() {
		where = append(where, "date_from <= ?")
		args = append(args, f.OverlapsUntil.String())
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, int(st))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_from, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []assignment.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

const selectAssignments = `
	SELECT id, drudge_id, specification_id, scope_statement_id, date_from,
	       date_until, date_until_extension, part_of_long_assignment, status,
	       arranged_on, mobilized_on, environment_course_date, motor_saw_course_date
	FROM assignments`

func scanAssignment(rows *sql.Rows) (assignment.Assignment, error) {
	var (
		a        assignment.Assignment
		from     string
		until    string
		ext      sql.NullString
		status   int
		arranged sql.NullString
		mobil    sql.NullString
		envDate  sql.NullString
		sawDate  sql.NullString
	)

	err := rows.Scan(&a.ID, &a.DrudgeID, &a.SpecificationID, &a.ScopeStatementID,
		&from, &until, &ext, &a.PartOfLongAssignment, &status,
		&arranged, &mobil, &envDate, &sawDate)
	if err != nil {
		return a, fmt.Errorf("failed to scan assignment: %w", err)
	}

	a.Status = assignment.Status(status)
	if a.DateFrom, err = calendar.ParseDate(from); err != nil {
		return a, err
	}
	if a.DateUntil, err = calendar.ParseDate(until); err != nil {
		return a, err
	}
	a.DateUntilExtension = scanDate(ext)
	a.ArrangedOn = scanDate(arranged)
	a.MobilizedOn = scanDate(mobil)
	a.EnvironmentCourseDate = scanDate(envDate)
	a.MotorSawCourseDate = scanDate(sawDate)

	return a, nil
}

// =============================================================================
// SPECIFICATIONS
// =============================================================================

func (s *Store) SaveSpecification(ctx context.Context, spec compensation.Specification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO specifications
		(id, scope_statement_id, code, with_accommodation,
		 working_accommodation, working_breakfast, working_lunch, working_supper,
		 sick_accommodation, sick_breakfast, sick_lunch, sick_supper,
		 free_accommodation, free_breakfast, free_lunch, free_supper, clothing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scope_statement_id = excluded.scope_statement_id,
			code = excluded.code,
			with_accommodation = excluded.with_accommodation,
			working_accommodation = excluded.working_accommodation,
			working_breakfast = excluded.working_breakfast,
			working_lunch = excluded.working_lunch,
			working_supper = excluded.working_supper,
			sick_accommodation = excluded.sick_accommodation,
			sick_breakfast = excluded.sick_breakfast,
			sick_lunch = excluded.sick_lunch,
			sick_supper = excluded.sick_supper,
			free_accommodation = excluded.free_accommodation,
			free_breakfast = excluded.free_breakfast,
			free_lunch = excluded.free_lunch,
			free_supper = excluded.free_supper,
			clothing = excluded.clothing
	`

	_, err := s.db.ExecContext(ctx, query,
		spec.ID, spec.ScopeStatementID, spec.Code, spec.WithAccommodation,
		string(spec.Working.Accommodation), string(spec.Working.Breakfast),
		string(spec.Working.Lunch), string(spec.Working.Supper),
		string(spec.Sick.Accommodation), string(spec.Sick.Breakfast),
		string(spec.Sick.Lunch), string(spec.Sick.Supper),
		string(spec.Free.Accommodation), string(spec.Free.Breakfast),
		string(spec.Free.Lunch), string(spec.Free.Supper),
		string(spec.Clothing),
	)
	return err
}

func (s *Store) GetSpecification(ctx context.Context, id string) (compensation.Specification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectSpecifications+" WHERE id = ?", id)
	if err != nil {
		return compensation.Specification{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return compensation.Specification{}, err
		}
		return compensation.Specification{}, store.ErrNotFound
	}
	return scanSpecification(rows)
}

func (s *Store) ListSpecifications(ctx context.Context) ([]compensation.Specification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectSpecifications+" ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []compensation.Specification
	for rows.Next() {
		spec, err := scanSpecification(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

const selectSpecifications = `
	SELECT id, scope_statement_id, code, with_accommodation,
	       working_accommodation, working_breakfast, working_lunch, working_supper,
	       sick_accommodation, sick_breakfast, sick_lunch, sick_supper,
	       free_accommodation, free_breakfast, free_lunch, free_supper, clothing
	FROM specifications`

func scanSpecification(rows *sql.Rows) (compensation.Specification, error) {
	var spec compensation.Specification
	var wa, wb, wl, ws, sa, sb, sl, ss, fa, fb, fl, fs, cl string

	err := rows.Scan(&spec.ID, &spec.ScopeStatementID, &spec.Code,
		&spec.WithAccommodation,
		&wa, &wb, &wl, &ws, &sa, &sb, &sl, &ss, &fa, &fb, &fl, &fs, &cl)
	if err != nil {
		return spec, fmt.Errorf("failed to scan specification: %w", err)
	}

	spec.Working = compensation.DayRules{
		Accommodation: compensation.AccommodationRule(wa),
		Breakfast:     compensation.MealRule(wb),
		Lunch:         compensation.MealRule(wl),
		Supper:        compensation.MealRule(ws),
	}
	spec.Sick = compensation.DayRules{
		Accommodation: compensation.AccommodationRule(sa),
		Breakfast:     compensation.MealRule(sb),
		Lunch:         compensation.MealRule(sl),
		Supper:        compensation.MealRule(ss),
	}
	spec.Free = compensation.DayRules{
		Accommodation: compensation.AccommodationRule(fa),
		Breakfast:     compensation.MealRule(fb),
		Lunch:         compensation.MealRule(fl),
		Supper:        compensation.MealRule(fs),
	}
	spec.Clothing = compensation.ClothingRule(cl)

	return spec, nil
}

// =============================================================================
// POLICIES
// =============================================================================

func (s *Store) SavePolicy(ctx context.Context, p compensation.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO policies
		(effective_from, spending_money, breakfast_at_accommodation,
		 lunch_at_accommodation, supper_at_accommodation, breakfast_external,
		 lunch_external, supper_external, accommodation_home,
		 private_transport_per_km, clothing, clothing_limit_per_assignment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(effective_from) DO UPDATE SET
			spending_money = excluded.spending_money,
			breakfast_at_accommodation = excluded.breakfast_at_accommodation,
			lunch_at_accommodation = excluded.lunch_at_accommodation,
			supper_at_accommodation = excluded.supper_at_accommodation,
			breakfast_external = excluded.breakfast_external,
			lunch_external = excluded.lunch_external,
			supper_external = excluded.supper_external,
			accommodation_home = excluded.accommodation_home,
			private_transport_per_km = excluded.private_transport_per_km,
			clothing = excluded.clothing,
			clothing_limit_per_assignment = excluded.clothing_limit_per_assignment
	`

	_, err := s.db.ExecContext(ctx, query,
		p.EffectiveFrom.String(),
		p.SpendingMoney.String(),
		p.BreakfastAtAccommodation.String(),
		p.LunchAtAccommodation.String(),
		p.SupperAtAccommodation.String(),
		p.BreakfastExternal.String(),
		p.LunchExternal.String(),
		p.SupperExternal.String(),
		p.AccommodationHome.String(),
		p.PrivateTransportPerKm.String(),
		p.Clothing.String(),
		p.ClothingLimitPerAssignment.String(),
	)
	return err
}

func (s *Store) ListPolicies(ctx context.Context) (compensation.PolicySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT effective_from, spending_money, breakfast_at_accommodation,
		       lunch_at_accommodation, supper_at_accommodation, breakfast_external,
		       lunch_external, supper_external, accommodation_home,
		       private_transport_per_km, clothing, clothing_limit_per_assignment
		FROM policies
		ORDER BY effective_from
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies compensation.PolicySet
	for rows.Next() {
		var p compensation.Policy
		var effectiveFrom string
		amounts := []*decimal.Decimal{
			&p.SpendingMoney, &p.BreakfastAtAccommodation,
			&p.LunchAtAccommodation, &p.SupperAtAccommodation,
			&p.BreakfastExternal, &p.LunchExternal, &p.SupperExternal,
			&p.AccommodationHome, &p.PrivateTransportPerKm,
			&p.Clothing, &p.ClothingLimitPerAssignment,
		}
		raw := make([]string, len(amounts))
		dest := []any{&effectiveFrom}
		for i := range raw {
			dest = append(dest, &raw[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		if p.EffectiveFrom, err = calendar.ParseDate(effectiveFrom); err != nil {
			return nil, err
		}
		for i, r := range raw {
			d, err := decimal.NewFromString(r)
			if err != nil {
				return nil, fmt.Errorf("bad amount %q in policy %s: %w", r, effectiveFrom, err)
			}
			*amounts[i] = d
		}

		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SavePublicHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO public_holidays (date, name)
		VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET name = excluded.name
	`

	_, err := s.db.ExecContext(ctx, query, h.Date.String(), h.Name)
	return err
}

func (s *Store) DeletePublicHoliday(ctx context.Context, d calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM public_holidays WHERE date = ?", d.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) PublicHolidaysBetween(ctx context.Context, from, until calendar.Date) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT date, name FROM public_holidays WHERE date >= ? AND date <= ? ORDER BY date",
		from.String(), until.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var date string
		if err := rows.Scan(&date, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(date); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) SaveCompanyHoliday(ctx context.Context, ch assignment.CompanyHoliday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appliesTo, err := json.Marshal(ch.AppliesTo)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO company_holidays (id, date_from, date_until, applies_to_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date_from = excluded.date_from,
			date_until = excluded.date_until,
			applies_to_json = excluded.applies_to_json
	`

	_, err = s.db.ExecContext(ctx, query,
		ch.ID, ch.Period.From.String(), ch.Period.Until.String(), string(appliesTo))
	return err
}

func (s *Store) CompanyHolidaysOverlapping(ctx context.Context, p calendar.Period, scopeID string) ([]assignment.CompanyHoliday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, date_from, date_until, applies_to_json
		FROM company_holidays
		WHERE date_from <= ? AND date_until >= ?
		ORDER BY date_from
	`

	rows, err := s.db.QueryContext(ctx, query, p.Until.String(), p.From.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []assignment.CompanyHoliday
	for rows.Next() {
		var ch assignment.CompanyHoliday
		var from, until, appliesTo string
		if err := rows.Scan(&ch.ID, &from, &until, &appliesTo); err != nil {
			return nil, err
		}
		if ch.Period.From, err = calendar.ParseDate(from); err != nil {
			return nil, err
		}
		if ch.Period.Until, err = calendar.ParseDate(until); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(appliesTo), &ch.AppliesTo); err != nil {
			return nil, err
		}

		// Scope filtering happens here rather than in SQL: the applies_to
		// list is stored as JSON.
		if scopeID != "" && !ch.AppliesToScope(scopeID) {
			continue
		}
		holidays = append(holidays, ch)
	}
	return holidays, rows.Err()
}

// =============================================================================
// EXPENSE REPORTS
// =============================================================================

func (s *Store) CreateReport(ctx context.Context, r *assignment.ExpenseReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO expense_reports
		(id, assignment_id, specification_id, period_start, period_end, report_no,
		 status, working_days, free_days, sick_days, holiday_days, forced_leave_days,
		 working_days_notes, free_days_notes, sick_days_notes, holiday_days_notes,
		 forced_leave_days_notes, calculated_total_days, clothing_expenses,
		 clothing_expenses_notes, transport_expenses, transport_expenses_notes,
		 miscellaneous, miscellaneous_notes, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, reportArgs(r)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return assignment.ErrReportExists
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (s *Store) UpdateReport(ctx context.Context, r *assignment.ExpenseReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE expense_reports SET
			assignment_id = ?, specification_id = ?, period_start = ?,
			period_end = ?, report_no = ?, status = ?, working_days = ?,
			free_days = ?, sick_days = ?, holiday_days = ?, forced_leave_days = ?,
			working_days_notes = ?, free_days_notes = ?, sick_days_notes = ?,
			holiday_days_notes = ?, forced_leave_days_notes = ?,
			calculated_total_days = ?, clothing_expenses = ?,
			clothing_expenses_notes = ?, transport_expenses = ?,
			transport_expenses_notes = ?, miscellaneous = ?,
			miscellaneous_notes = ?, total = ?
		WHERE id = ?
	`

	args := append(reportArgs(r)[1:], r.ID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (assignment.ExpenseReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectReports+" WHERE id = ?", id)
	if err != nil {
		return assignment.ExpenseReport{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assignment.ExpenseReport{}, err
		}
		return assignment.ExpenseReport{}, store.ErrNotFound
	}
	return scanReport(rows)
}

func (s *Store) ReportsForAssignment(ctx context.Context, assignmentID string) ([]assignment.ExpenseReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectReports+" WHERE assignment_id = ? ORDER BY period_start", assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []assignment.ExpenseReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM expense_reports WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

const selectReports = `
	SELECT id, assignment_id, specification_id, period_start, period_end,
	       report_no, status, working_days, free_days, sick_days, holiday_days,
	       forced_leave_days, working_days_notes, free_days_notes, sick_days_notes,
	       holiday_days_notes, forced_leave_days_notes, calculated_total_days,
	       clothing_expenses, clothing_expenses_notes, transport_expenses,
	       transport_expenses_notes, miscellaneous, miscellaneous_notes, total
	FROM expense_reports`

func reportArgs(r *assignment.ExpenseReport) []any {
	return []any{
		r.ID, r.AssignmentID, r.SpecificationID,
		r.PeriodStart.String(), r.PeriodEnd.String(), r.ReportNo,
		int(r.Status),
		r.WorkingDays, r.FreeDays, r.SickDays, r.HolidayDays, r.ForcedLeaveDays,
		r.WorkingDaysNotes, r.FreeDaysNotes, r.SickDaysNotes,
		r.HolidayDaysNotes, r.ForcedLeaveDaysNotes,
		r.CalculatedTotalDays,
		r.ClothingExpenses.String(), r.ClothingExpensesNotes,
		r.TransportExpenses.String(), r.TransportExpNotes,
		r.Miscellaneous.String(), r.MiscellaneousNotes,
		r.Total.String(),
	}
}

func scanReport(rows *sql.Rows) (assignment.ExpenseReport, error) {
	var (
		r                      assignment.ExpenseReport
		periodStart, periodEnd string
		status                 int
		clothing, transport    string
		miscellaneous, total   string
	)

	err := rows.Scan(&r.ID, &r.AssignmentID, &r.SpecificationID,
		&periodStart, &periodEnd, &r.ReportNo, &status,
		&r.WorkingDays, &r.FreeDays, &r.SickDays, &r.HolidayDays,
		&r.ForcedLeaveDays,
		&r.WorkingDaysNotes, &r.FreeDaysNotes, &r.SickDaysNotes,
		&r.HolidayDaysNotes, &r.ForcedLeaveDaysNotes,
		&r.CalculatedTotalDays,
		&clothing, &r.ClothingExpensesNotes,
		&transport, &r.TransportExpNotes,
		&miscellaneous, &r.MiscellaneousNotes, &total)
	if err != nil {
		return r, fmt.Errorf("failed to scan report: %w", err)
	}

	r.Status = assignment.ReportStatus(status)
	if r.PeriodStart, err = calendar.ParseDate(periodStart); err != nil {
		return r, err
	}
	if r.PeriodEnd, err = calendar.ParseDate(periodEnd); err != nil {
		return r, err
	}
	for _, field := range []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{clothing, &r.ClothingExpenses},
		{transport, &r.TransportExpenses},
		{miscellaneous, &r.Miscellaneous},
		{total, &r.Total},
	} {
		d, err := decimal.NewFromString(field.raw)
		if err != nil {
			return r, fmt.Errorf("bad amount %q in report %s: %w", field.raw, r.ID, err)
		}
		*field.dest = d
	}

	return r, nil
}

// =============================================================================
// QUOTAS & CHANGE LOG
// =============================================================================

func (s *Store) SaveQuota(ctx context.Context, q store.Quota) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO drudge_quotas (scope_statement_id, week, quota)
		VALUES (?, ?, ?)
		ON CONFLICT(scope_statement_id, week) DO UPDATE SET
			quota = excluded.quota
	`

	_, err := s.db.ExecContext(ctx, query,
		q.ScopeStatementID, q.Week.String(), q.Value)
	return err
}

func (s *Store) QuotasBetween(ctx context.Context, scopeID string, from, until calendar.Date) (map[calendar.Date]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT week, quota FROM drudge_quotas
		 WHERE scope_statement_id = ? AND week >= ? AND week <= ?`,
		scopeID, from.String(), until.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[calendar.Date]int)
	for rows.Next() {
		var week string
		var quota int
		if err := rows.Scan(&week, &quota); err != nil {
			return nil, err
		}
		d, err := calendar.ParseDate(week)
		if err != nil {
			return nil, err
		}
		out[d] = quota
	}
	return out, rows.Err()
}

func (s *Store) AppendChange(ctx context.Context, e assignment.ChangeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO change_log (record_id, changed_at, actor, field, from_value, to_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.RecordID, e.At.UTC().Format(time.RFC3339), e.Actor, e.Field, e.From, e.To)
	return err
}

func (s *Store) ChangesFor(ctx context.Context, recordID string) ([]assignment.ChangeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, changed_at, actor, field, from_value, to_value
		 FROM change_log WHERE record_id = ? ORDER BY changed_at, rowid`,
		recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []assignment.ChangeEntry
	for rows.Next() {
		var e assignment.ChangeEntry
		var at string
		if err := rows.Scan(&e.RecordID, &at, &e.Actor, &e.Field, &e.From, &e.To); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		changes = append(changes, e)
	}
	return changes, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

func nullDate(d calendar.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func scanDate(ns sql.NullString) calendar.Date {
	if !ns.Valid {
		return calendar.Date{}
	}
	d, _ := calendar.ParseDate(ns.String)
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

/*
Package sqlite provides the SQLite-backed implementation of the jornada
repository interfaces.

PURPOSE:
  One store implements both sides of the engine's contract: the read
  interfaces normally owned by external collaborators (raw punches,
  identity map, planned shifts, holidays) and the ResultStore/ResultReader
  for derived output. In production the same patterns apply to PostgreSQL;
  only minor SQL dialect differences.

KEY TABLES:
  raw_punches:         append-only clock events (external feed mirror)
  identity_map:        biometric identifier -> employee
  planned_shifts:      plan feed mirror
  holidays:            holiday calendar mirror
  work_sessions:       derived, UNIQUE(employee_id, work_date)
  classified_hours:    derived, UNIQUE(employee_id, work_date)
  compliance_results:  derived, UNIQUE(employee_id, date)
  inconsistency_flags: durable review signals, resolved explicitly

IDEMPOTENCY:
  Every derived table is written with INSERT ... ON CONFLICT DO UPDATE on
  its (employee, date) key. That key is the single-writer unit: a rerun or
  an overlapping job serializes on the upsert instead of interleaving
  partial writes.

PAGINATION:
  Punch reads are keyset-paginated on rowid with a fixed page size, so
  recomputing a large historical window never loads an unbounded set.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

SEE ALSO:
  - jornada/store.go: interface definitions
  - jornada/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/angeant/sicamar-hours/jornada"
)

// Store implements every jornada repository interface using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	-- Raw punch feed (append-only mirror of the device sync)
	CREATE TABLE IF NOT EXISTS raw_punches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identifier_id TEXT NOT NULL,
		punch_type TEXT NOT NULL CHECK (punch_type IN ('ENTRY','EXIT')),
		at_utc TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_punches_identifier_at
		ON raw_punches(identifier_id, at_utc);
	CREATE INDEX IF NOT EXISTS idx_punches_at
		ON raw_punches(at_utc);

	-- Identity map (read-only here; registration collaborator owns it)
	CREATE TABLE IF NOT EXISTS identity_map (
		identifier_id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_identity_employee
		ON identity_map(employee_id);

	-- Plan feed mirror
	CREATE TABLE IF NOT EXISTS planned_shifts (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('WORKING','ABSENT','REST')),
		absence_reason TEXT NOT NULL DEFAULT '',
		planned_entry_utc TEXT,
		planned_exit_utc TEXT,
		PRIMARY KEY (employee_id, date)
	);

	-- Holiday calendar mirror
	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		workable INTEGER NOT NULL DEFAULT 0
	);

	-- Derived: authoritative session per (employee, work date)
	CREATE TABLE IF NOT EXISTS work_sessions (
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		entry_at_utc TEXT NOT NULL,
		exit_at_utc TEXT,
		duration_minutes INTEGER NOT NULL,
		PRIMARY KEY (employee_id, work_date)
	);

	-- Derived: classified hours per (employee, work date)
	CREATE TABLE IF NOT EXISTS classified_hours (
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		normal TEXT NOT NULL,
		extra50_diurnal TEXT NOT NULL,
		extra50_nocturnal TEXT NOT NULL,
		extra100_diurnal TEXT NOT NULL,
		extra100_nocturnal TEXT NOT NULL,
		normal_displaced_to_100 TEXT NOT NULL,
		PRIMARY KEY (employee_id, work_date)
	);

	-- Derived: compliance per (employee, date)
	CREATE TABLE IF NOT EXISTS compliance_results (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		entry_ok INTEGER,
		exit_ok INTEGER,
		entry_delta_min INTEGER,
		exit_delta_min INTEGER,
		absence_reason TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (employee_id, date)
	);

	-- Durable review signals; cleared only by explicit resolution
	CREATE TABLE IF NOT EXISTS inconsistency_flags (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		raised_at_utc TEXT NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0,
		resolved_by TEXT NOT NULL DEFAULT '',
		resolved_at_utc TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_flags_date
		ON inconsistency_flags(date);
	-- One unresolved flag per condition; reruns must not duplicate it
	CREATE UNIQUE INDEX IF NOT EXISTS idx_flags_unresolved_condition
		ON inconsistency_flags(employee_id, date, kind)
		WHERE resolved = 0;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIME ENCODING
// =============================================================================

const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

// =============================================================================
// INGEST WRITERS - Feed mirrors kept current by the sync collaborators
// =============================================================================

// AddPunch appends one raw clock event. The punch feed is append-only.
func (s *Store) AddPunch(ctx context.Context, p jornada.RawPunch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_punches (identifier_id, punch_type, at_utc) VALUES (?, ?, ?)`,
		string(p.IdentifierID), string(p.Type), encodeTime(p.At))
	return err
}

// MapIdentifier binds a biometric identifier to an employee, replacing any
// previous binding (an identifier maps to at most one employee at a time).
func (s *Store) MapIdentifier(ctx context.Context, id jornada.IdentifierID, emp jornada.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identity_map (identifier_id, employee_id) VALUES (?, ?)
		 ON CONFLICT(identifier_id) DO UPDATE SET employee_id = excluded.employee_id`,
		string(id), string(emp))
	return err
}

// UpsertPlan mirrors one planned shift from the planning collaborator.
func (s *Store) UpsertPlan(ctx context.Context, p jornada.PlannedShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO planned_shifts (employee_id, date, status, absence_reason, planned_entry_utc, planned_exit_utc)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, date) DO UPDATE SET
			status = excluded.status,
			absence_reason = excluded.absence_reason,
			planned_entry_utc = excluded.planned_entry_utc,
			planned_exit_utc = excluded.planned_exit_utc`,
		string(p.EmployeeID), p.Date.String(), string(p.Status), p.AbsenceReason,
		encodeNullableTime(p.PlannedEntry), encodeNullableTime(p.PlannedExit))
	return err
}

// AddHoliday records one holiday date. workable marks a dia no laborable
// that pays ordinary rules despite being on the calendar.
func (s *Store) AddHoliday(ctx context.Context, d jornada.CivilDate, name string, workable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := 0
	if workable {
		w = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (date, name, workable) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET name = excluded.name, workable = excluded.workable`,
		d.String(), name, w)
	return err
}

// =============================================================================
// PUNCH READER - Keyset pagination on rowid
// =============================================================================

func (s *Store) ReadPunches(ctx context.Context, ids []jornada.IdentifierID, from, to time.Time, cursor string, limit int) (jornada.PunchPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(ids) == 0 {
		return jornada.PunchPage{}, nil
	}

	afterID := int64(0)
	if cursor != "" {
		n, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return jornada.PunchPage{}, fmt.Errorf("bad cursor %q: %w", cursor, err)
		}
		afterID = n
	}

	query := `SELECT id, identifier_id, punch_type, at_utc
		FROM raw_punches
		WHERE id > ? AND at_utc >= ? AND at_utc < ? AND identifier_id IN (?` +
		strings.Repeat(",?", len(ids)-1) + `)
		ORDER BY id
		LIMIT ?`

	args := []any{afterID, encodeTime(from), encodeTime(to)}
	for _, id := range ids {
		args = append(args, string(id))
	}
	args = append(args, limit+1) // one extra row to detect a next page

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return jornada.PunchPage{}, err
	}
	defer rows.Close()

	var page jornada.PunchPage
	var lastID int64
	for rows.Next() {
		var (
			id    int64
			ident string
			ptype string
			atUTC string
		)
		if err := rows.Scan(&id, &ident, &ptype, &atUTC); err != nil {
			return jornada.PunchPage{}, err
		}
		if len(page.Punches) == limit {
			page.NextCursor = strconv.FormatInt(lastID, 10)
			break
		}
		at, err := decodeTime(atUTC)
		if err != nil {
			return jornada.PunchPage{}, err
		}
		page.Punches = append(page.Punches, jornada.RawPunch{
			IdentifierID: jornada.IdentifierID(ident),
			Type:         jornada.PunchType(ptype),
			At:           at,
		})
		lastID = id
	}
	return page, rows.Err()
}

// =============================================================================
// IDENTITY MAP
// =============================================================================

func (s *Store) IdentifiersFor(ctx context.Context, employees []jornada.EmployeeID) (map[jornada.EmployeeID][]jornada.IdentifierID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[jornada.EmployeeID][]jornada.IdentifierID, len(employees))
	for _, emp := range employees {
		ids, err := s.identifiersForOne(ctx, emp)
		if err != nil {
			return nil, err
		}
		out[emp] = ids
	}
	return out, nil
}

func (s *Store) identifiersForOne(ctx context.Context, emp jornada.EmployeeID) ([]jornada.IdentifierID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier_id FROM identity_map WHERE employee_id = ? ORDER BY identifier_id`,
		string(emp))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []jornada.IdentifierID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, jornada.IdentifierID(id))
	}
	return ids, rows.Err()
}

func (s *Store) EmployeeFor(ctx context.Context, id jornada.IdentifierID) (jornada.EmployeeID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp string
	err := s.db.QueryRowContext(ctx,
		`SELECT employee_id FROM identity_map WHERE identifier_id = ?`, string(id)).Scan(&emp)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return jornada.EmployeeID(emp), true, nil
}

// =============================================================================
// PLAN READER / HOLIDAY SET
// =============================================================================

func (s *Store) PlansInRange(ctx context.Context, employees []jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.PlannedShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(employees) == 0 {
		return nil, nil
	}
	query := `SELECT employee_id, date, status, absence_reason, planned_entry_utc, planned_exit_utc
		FROM planned_shifts
		WHERE date >= ? AND date <= ? AND employee_id IN (?` + strings.Repeat(",?", len(employees)-1) + `)
		ORDER BY employee_id, date`
	args := []any{from.String(), to.String()}
	for _, emp := range employees {
		args = append(args, string(emp))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jornada.PlannedShift
	for rows.Next() {
		var (
			emp, dateStr, status, reason string
			entryUTC, exitUTC            sql.NullString
		)
		if err := rows.Scan(&emp, &dateStr, &status, &reason, &entryUTC, &exitUTC); err != nil {
			return nil, err
		}
		date, err := jornada.ParseCivilDate(dateStr)
		if err != nil {
			return nil, err
		}
		p := jornada.PlannedShift{
			EmployeeID:    jornada.EmployeeID(emp),
			Date:          date,
			Status:        jornada.ShiftStatus(status),
			AbsenceReason: reason,
		}
		if p.PlannedEntry, err = scanNullableTime(entryUTC); err != nil {
			return nil, err
		}
		if p.PlannedExit, err = scanNullableTime(exitUTC); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := decodeTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) HolidayOn(ctx context.Context, d jornada.CivilDate) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var workable int
	err := s.db.QueryRowContext(ctx, `SELECT workable FROM holidays WHERE date = ?`, d.String()).Scan(&workable)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, workable != 0, nil
}

// =============================================================================
// RESULT STORE - Idempotent upserts keyed by (employee, work date)
// =============================================================================

func (s *Store) UpsertSession(ctx context.Context, ws jornada.WorkSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_sessions (employee_id, work_date, entry_at_utc, exit_at_utc, duration_minutes)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, work_date) DO UPDATE SET
			entry_at_utc = excluded.entry_at_utc,
			exit_at_utc = excluded.exit_at_utc,
			duration_minutes = excluded.duration_minutes`,
		string(ws.EmployeeID), ws.WorkDate.String(), encodeTime(ws.EntryAt),
		encodeNullableTime(ws.ExitAt), int64(ws.Duration/time.Minute))
	return err
}

func (s *Store) UpsertHours(ctx context.Context, emp jornada.EmployeeID, date jornada.CivilDate, h jornada.ClassifiedHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classified_hours
			(employee_id, work_date, normal, extra50_diurnal, extra50_nocturnal,
			 extra100_diurnal, extra100_nocturnal, normal_displaced_to_100)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, work_date) DO UPDATE SET
			normal = excluded.normal,
			extra50_diurnal = excluded.extra50_diurnal,
			extra50_nocturnal = excluded.extra50_nocturnal,
			extra100_diurnal = excluded.extra100_diurnal,
			extra100_nocturnal = excluded.extra100_nocturnal,
			normal_displaced_to_100 = excluded.normal_displaced_to_100`,
		string(emp), date.String(),
		h.Normal.String(), h.Extra50Diurnal.String(), h.Extra50Nocturnal.String(),
		h.Extra100Diurnal.String(), h.Extra100Nocturnal.String(), h.NormalDisplacedTo100.String())
	return err
}

func (s *Store) UpsertCompliance(ctx context.Context, r jornada.ComplianceResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compliance_results
			(employee_id, date, status, entry_ok, exit_ok, entry_delta_min, exit_delta_min, absence_reason, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, date) DO UPDATE SET
			status = excluded.status,
			entry_ok = excluded.entry_ok,
			exit_ok = excluded.exit_ok,
			entry_delta_min = excluded.entry_delta_min,
			exit_delta_min = excluded.exit_delta_min,
			absence_reason = excluded.absence_reason,
			notes = excluded.notes`,
		string(r.EmployeeID), r.Date.String(), string(r.Status),
		nullableBool(r.EntryOK), nullableBool(r.ExitOK),
		nullableInt(r.EntryDeltaMin), nullableInt(r.ExitDeltaMin),
		r.AbsenceReason, r.Notes)
	return err
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func (s *Store) DeleteDerived(ctx context.Context, employees []jornada.EmployeeID, from, to jornada.CivilDate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(employees) == 0 {
		return nil
	}
	in := `(?` + strings.Repeat(",?", len(employees)-1) + `)`
	args := []any{from.String(), to.String()}
	for _, emp := range employees {
		args = append(args, string(emp))
	}

	// Flags are intentionally untouched: durable review signals.
	for _, stmt := range []string{
		`DELETE FROM work_sessions WHERE work_date >= ? AND work_date <= ? AND employee_id IN ` + in,
		`DELETE FROM classified_hours WHERE work_date >= ? AND work_date <= ? AND employee_id IN ` + in,
		`DELETE FROM compliance_results WHERE date >= ? AND date <= ? AND employee_id IN ` + in,
	} {
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RaiseFlag(ctx context.Context, f jornada.InconsistencyFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The partial unique index keeps one unresolved flag per condition; a
	// rerun over identical data hits the conflict and keeps the original.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inconsistency_flags (id, employee_id, date, kind, detail, raised_at_utc)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, date, kind) WHERE resolved = 0 DO NOTHING`,
		f.ID, string(f.EmployeeID), f.Date.String(), string(f.Kind), f.Detail, encodeTime(f.RaisedAt))
	return err
}

// =============================================================================
// RESULT READER
// =============================================================================

func (s *Store) HoursInRange(ctx context.Context, emp jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.HoursRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT work_date, normal, extra50_diurnal, extra50_nocturnal,
			extra100_diurnal, extra100_nocturnal, normal_displaced_to_100
		 FROM classified_hours
		 WHERE employee_id = ? AND work_date >= ? AND work_date <= ?
		 ORDER BY work_date`,
		string(emp), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jornada.HoursRecord
	for rows.Next() {
		var dateStr string
		var n, e50d, e50n, e100d, e100n, disp string
		if err := rows.Scan(&dateStr, &n, &e50d, &e50n, &e100d, &e100n, &disp); err != nil {
			return nil, err
		}
		date, err := jornada.ParseCivilDate(dateStr)
		if err != nil {
			return nil, err
		}
		h, err := decodeHours(n, e50d, e50n, e100d, e100n, disp)
		if err != nil {
			return nil, err
		}
		out = append(out, jornada.HoursRecord{EmployeeID: emp, Date: date, Hours: h})
	}
	return out, rows.Err()
}

func decodeHours(n, e50d, e50n, e100d, e100n, disp string) (jornada.ClassifiedHours, error) {
	var h jornada.ClassifiedHours
	for _, f := range []struct {
		s   string
		dst *jornada.Hours
	}{
		{n, &h.Normal},
		{e50d, &h.Extra50Diurnal},
		{e50n, &h.Extra50Nocturnal},
		{e100d, &h.Extra100Diurnal},
		{e100n, &h.Extra100Nocturnal},
		{disp, &h.NormalDisplacedTo100},
	} {
		v, err := strconv.ParseFloat(f.s, 64)
		if err != nil {
			return h, fmt.Errorf("bad stored hours %q: %w", f.s, err)
		}
		*f.dst = jornada.HoursOf(v)
	}
	return h, nil
}

func (s *Store) ComplianceInRange(ctx context.Context, emp jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.ComplianceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, status, entry_ok, exit_ok, entry_delta_min, exit_delta_min, absence_reason, notes
		 FROM compliance_results
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		 ORDER BY date`,
		string(emp), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jornada.ComplianceResult
	for rows.Next() {
		var (
			dateStr, status, reason, notes string
			entryOK, exitOK                sql.NullInt64
			entryDelta, exitDelta          sql.NullInt64
		)
		if err := rows.Scan(&dateStr, &status, &entryOK, &exitOK, &entryDelta, &exitDelta, &reason, &notes); err != nil {
			return nil, err
		}
		date, err := jornada.ParseCivilDate(dateStr)
		if err != nil {
			return nil, err
		}
		out = append(out, jornada.ComplianceResult{
			EmployeeID:    emp,
			Date:          date,
			Status:        jornada.ComplianceStatus(status),
			EntryOK:       scanBool(entryOK),
			ExitOK:        scanBool(exitOK),
			EntryDeltaMin: scanInt(entryDelta),
			ExitDeltaMin:  scanInt(exitDelta),
			AbsenceReason: reason,
			Notes:         notes,
		})
	}
	return out, rows.Err()
}

func scanBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 != 0
	return &b
}

func scanInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func (s *Store) Flags(ctx context.Context, from, to jornada.CivilDate, unresolvedOnly bool) ([]jornada.InconsistencyFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, employee_id, date, kind, detail, raised_at_utc, resolved, resolved_by, resolved_at_utc
		FROM inconsistency_flags
		WHERE date >= ? AND date <= ?`
	if unresolvedOnly {
		query += ` AND resolved = 0`
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jornada.InconsistencyFlag
	for rows.Next() {
		var (
			id, emp, dateStr, kind, detail, raisedUTC, resolvedBy string
			resolved                                              int
			resolvedUTC                                           sql.NullString
		)
		if err := rows.Scan(&id, &emp, &dateStr, &kind, &detail, &raisedUTC, &resolved, &resolvedBy, &resolvedUTC); err != nil {
			return nil, err
		}
		date, err := jornada.ParseCivilDate(dateStr)
		if err != nil {
			return nil, err
		}
		raisedAt, err := decodeTime(raisedUTC)
		if err != nil {
			return nil, err
		}
		f := jornada.InconsistencyFlag{
			ID:         id,
			EmployeeID: jornada.EmployeeID(emp),
			Date:       date,
			Kind:       jornada.FlagKind(kind),
			Detail:     detail,
			RaisedAt:   raisedAt,
			Resolved:   resolved != 0,
			ResolvedBy: resolvedBy,
		}
		if f.ResolvedAt, err = scanNullableTime(resolvedUTC); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) ResolveFlag(ctx context.Context, flagID, resolvedBy, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resolved int
	err := s.db.QueryRowContext(ctx,
		`SELECT resolved FROM inconsistency_flags WHERE id = ?`, flagID).Scan(&resolved)
	if err == sql.ErrNoRows {
		return jornada.ErrFlagNotFound
	}
	if err != nil {
		return err
	}
	if resolved != 0 {
		return jornada.ErrFlagAlreadyResolved
	}

	detailSuffix := ""
	if note != "" {
		detailSuffix = "; resolved: " + note
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE inconsistency_flags
		 SET resolved = 1, resolved_by = ?, resolved_at_utc = ?, detail = detail || ?
		 WHERE id = ?`,
		resolvedBy, encodeTime(time.Now()), detailSuffix, flagID)
	return err
}

// ListEmployees returns every employee present in the identity map, for the
// scheduler's whole-roster recompute.
func (s *Store) ListEmployees(ctx context.Context) ([]jornada.EmployeeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT employee_id FROM identity_map ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []jornada.EmployeeID
	for rows.Next() {
		var emp string
		if err := rows.Scan(&emp); err != nil {
			return nil, err
		}
		out = append(out, jornada.EmployeeID(emp))
	}
	return out, rows.Err()
}

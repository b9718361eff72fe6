/*
Package jornada reconciles raw time-clock punches against planned work
schedules to produce classified, payable hours.

PURPOSE:
  This package contains the core batch engine: it pairs entry/exit punches
  into work sessions, attributes each session to a civil work date in the
  employer's timezone, discretizes overtime into half-hour grid slots split
  by rate (50%/100%) and period (diurnal/nocturnal), and evaluates whether
  actual attendance complied with the plan within tolerance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: an exact quantity of worked hours (always a multiple of 0.5 in
    classified output)
  - RawPunch: an immutable clock event from a biometric device
  - WorkSession: a paired entry/exit attributed to one civil work date
  - ClassifiedHours: the five payable buckets for one employee/date
  - PlannedShift / ComplianceResult: plan vs. actual evaluation
  - InconsistencyFlag: a persisted, human-reviewable data-quality signal

DESIGN PRINCIPLES:
  1. Determinism: identical inputs always yield identical outputs
  2. Precision: uses decimal.Decimal so half-hour arithmetic is exact
  3. Derived values: sessions, hours, and compliance are recomputed, never
     incrementally mutated
  4. Explicit timezone: every local-time decision goes through an injected
     civil zone, never the process default

SEE ALSO:
  - clock.go: civil-date attribution and grid alignment
  - pairing.go: the entry/exit pairing state machine
  - grid.go: the half-hour overtime classifier
  - compliance.go: plan vs. actual evaluation
  - pipeline.go: full-window recomputation and consolidation
*/
package jornada

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID identifies one employee in the employer's roster.
type EmployeeID string

// IdentifierID is a device-assigned biometric token. Many identifiers may map
// to one employee over time; an identifier maps to at most one employee.
type IdentifierID string

// =============================================================================
// HOURS - Exact quantity of worked time
// =============================================================================

// Hours is an exact decimal quantity of hours. Classified output is always a
// non-negative multiple of 0.5.
type Hours struct {
	Value decimal.Decimal
}

var halfHour = decimal.NewFromFloat(0.5)

func HoursOf(v float64) Hours   { return Hours{Value: decimal.NewFromFloat(v)} }
func HalfHours(slots int) Hours { return Hours{Value: decimal.NewFromInt(int64(slots)).Mul(halfHour)} }
func ZeroHours() Hours          { return Hours{Value: decimal.Zero} }

// GridHours floors a duration down to the half-hour grid.
func GridHours(d time.Duration) Hours {
	if d <= 0 {
		return ZeroHours()
	}
	return HalfHours(int(d / (30 * time.Minute)))
}

func (h Hours) Add(o Hours) Hours { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours { return Hours{Value: h.Value.Sub(o.Value)} }

// Min returns the smaller of two quantities.
func (h Hours) Min(o Hours) Hours {
	if h.LessThan(o) {
		return h
	}
	return o
}
func (h Hours) IsZero() bool             { return h.Value.IsZero() }
func (h Hours) IsNegative() bool         { return h.Value.IsNegative() }
func (h Hours) IsPositive() bool         { return h.Value.IsPositive() }
func (h Hours) LessThan(o Hours) bool    { return h.Value.LessThan(o.Value) }
func (h Hours) GreaterThan(o Hours) bool { return h.Value.GreaterThan(o.Value) }
func (h Hours) Equal(o Hours) bool       { return h.Value.Equal(o.Value) }
func (h Hours) String() string           { return h.Value.StringFixed(1) }

func (h Hours) Float64() float64 {
	f, _ := h.Value.Float64()
	return f
}

// Duration converts whole-and-half hours back to a time.Duration.
func (h Hours) Duration() time.Duration {
	mins := h.Value.Mul(decimal.NewFromInt(60)).IntPart()
	return time.Duration(mins) * time.Minute
}

// =============================================================================
// CIVIL DATE - Timezone-free calendar date
// =============================================================================

// CivilDate is a calendar date with no timezone attached. The employer's
// injected zone decides which instants fall on which CivilDate.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return CivilDate{Year: year, Month: month, Day: day}
}

// ParseCivilDate parses "2006-01-02".
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid civil date %q: %w", s, err)
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

func (d CivilDate) Before(o CivilDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d CivilDate) Equal(o CivilDate) bool         { return d == o }
func (d CivilDate) After(o CivilDate) bool         { return o.Before(d) }
func (d CivilDate) BeforeOrEqual(o CivilDate) bool { return !o.Before(d) }
func (d CivilDate) AfterOrEqual(o CivilDate) bool  { return !d.Before(o) }

// DatesBetween returns every date in [from, to] inclusive.
func DatesBetween(from, to CivilDate) []CivilDate {
	var out []CivilDate
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// =============================================================================
// RAW PUNCH - Immutable clock event
// =============================================================================

type PunchType string

const (
	PunchEntry PunchType = "ENTRY"
	PunchExit  PunchType = "EXIT"
)

// RawPunch is one clock event as delivered by the device-sync collaborator.
// Append-only input; this package never mutates punches.
type RawPunch struct {
	IdentifierID IdentifierID
	Type         PunchType
	At           time.Time
}

// =============================================================================
// WORK SESSION - Paired entry/exit attributed to one work date
// =============================================================================

// WorkSession is a derived pairing of an entry punch with its exit. Sessions
// are always reconstructible from raw punches plus the identity map; they are
// recomputed on every run, never treated as a source of truth.
//
// INVARIANT: when ExitAt is present, EntryAt < ExitAt and Duration <= 14h.
// Pairings violating this are discarded as device noise, never credited.
type WorkSession struct {
	EmployeeID EmployeeID
	WorkDate   CivilDate
	EntryAt    time.Time
	ExitAt     *time.Time // nil = missing exit, credited the expected jornada
	Duration   time.Duration
}

// Complete reports whether the session has both punches.
func (s WorkSession) Complete() bool { return s.ExitAt != nil }

// =============================================================================
// CLASSIFIED HOURS - The five payable buckets
// =============================================================================

// ClassifiedHours is the classified output for exactly one WorkSession.
// Every field is a non-negative multiple of 0.5. NormalDisplacedTo100 is a
// memo for payroll visibility: it records ordinary-jornada time that the
// weekend/holiday override moved into the 100% buckets, and is not part of
// the bucket sum.
type ClassifiedHours struct {
	Normal               Hours
	Extra50Diurnal       Hours
	Extra50Nocturnal     Hours
	Extra100Diurnal      Hours
	Extra100Nocturnal    Hours
	NormalDisplacedTo100 Hours
}

// Total returns normal plus the four overtime buckets. Never exceeds the
// session duration floored to the grid.
func (c ClassifiedHours) Total() Hours {
	return c.Normal.
		Add(c.Extra50Diurnal).Add(c.Extra50Nocturnal).
		Add(c.Extra100Diurnal).Add(c.Extra100Nocturnal)
}

// Merge sums two classifications; used when a session is split at the
// Saturday 13:00 boundary and each half classified independently.
func (c ClassifiedHours) Merge(o ClassifiedHours) ClassifiedHours {
	return ClassifiedHours{
		Normal:               c.Normal.Add(o.Normal),
		Extra50Diurnal:       c.Extra50Diurnal.Add(o.Extra50Diurnal),
		Extra50Nocturnal:     c.Extra50Nocturnal.Add(o.Extra50Nocturnal),
		Extra100Diurnal:      c.Extra100Diurnal.Add(o.Extra100Diurnal),
		Extra100Nocturnal:    c.Extra100Nocturnal.Add(o.Extra100Nocturnal),
		NormalDisplacedTo100: c.NormalDisplacedTo100.Add(o.NormalDisplacedTo100),
	}
}

// =============================================================================
// DAY TYPE
// =============================================================================

type DayType string

const (
	DayWeekday  DayType = "WEEKDAY"
	DaySaturday DayType = "SATURDAY"
	DaySunday   DayType = "SUNDAY"
	DayHoliday  DayType = "HOLIDAY"
)

// =============================================================================
// PLANNED SHIFT - Owned by the external planning collaborator
// =============================================================================

type ShiftStatus string

const (
	ShiftWorking ShiftStatus = "WORKING"
	ShiftAbsent  ShiftStatus = "ABSENT"
	ShiftRest    ShiftStatus = "REST"
)

// PlannedShift is read-only here; the planning collaborator owns it.
type PlannedShift struct {
	EmployeeID    EmployeeID
	Date          CivilDate
	Status        ShiftStatus
	AbsenceReason string     // set when Status == ShiftAbsent
	PlannedEntry  *time.Time // set when Status == ShiftWorking
	PlannedExit   *time.Time
}

// =============================================================================
// COMPLIANCE RESULT
// =============================================================================

// ComplianceStatus values keep the Spanish labels the review UI displays.
type ComplianceStatus string

const (
	ComplianceOK           ComplianceStatus = "cumplido"
	ComplianceUndetermined ComplianceStatus = "no_determinar"
	ComplianceUnplanned    ComplianceStatus = "sin_planificacion"
	ComplianceDayOff       ComplianceStatus = "franco"
	ComplianceAbsent       ComplianceStatus = "ausente"
)

// ComplianceResult is derived per (employee, date) and fully recomputed on
// every run. Ambiguous data always resolves to ComplianceUndetermined, never
// to a false ComplianceOK.
type ComplianceResult struct {
	EmployeeID    EmployeeID
	Date          CivilDate
	Status        ComplianceStatus
	EntryOK       *bool
	ExitOK        *bool
	EntryDeltaMin *int // negative = early
	ExitDeltaMin  *int
	AbsenceReason string
	Notes         string
}

// =============================================================================
// INCONSISTENCY FLAGS - Durable human-review signals
// =============================================================================

type FlagKind string

const (
	FlagMissingEntry   FlagKind = "missing-entry"
	FlagMissingExit    FlagKind = "missing-exit"
	FlagInvalidSession FlagKind = "invalid-session"
	FlagNoPunches      FlagKind = "no-punches"
)

// InconsistencyFlag records a fact about the input data, not a software bug.
// Flags are cleared by explicit human resolution, never silently by a rerun
// over identical data.
type InconsistencyFlag struct {
	ID         string
	EmployeeID EmployeeID
	Date       CivilDate
	Kind       FlagKind
	Detail     string
	RaisedAt   time.Time
	Resolved   bool
	ResolvedBy string
	ResolvedAt *time.Time
}

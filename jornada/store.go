/*
store.go - Repository interfaces between the engine and its collaborators

PURPOSE:
  The engine performs no I/O of its own. Raw punches, the identity map,
  planned shifts, and the holiday set are supplied through these read
  interfaces; derived outputs flow back through ResultStore. Explicit
  interfaces (rather than shared connection handles) let tests substitute
  the in-memory fakes in jornada/store.

PAGINATION:
  Recomputation over large historical windows reads punches through a
  bounded, resumable cursor with a fixed page size. Each page's derived
  writes are independently idempotent, so a restarted run never corrupts
  previously written pages.

IDEMPOTENT WRITES:
  Every derived record is upserted keyed by (employee, work date). That key
  is the single-writer unit: overlapping recomputations for the same key
  serialize on the upsert instead of interleaving partial writes.

IMPLEMENTATIONS:
  - store/sqlite: production persistence
  - jornada/store: in-memory fakes for tests and development
*/
package jornada

import (
	"context"
	"time"
)

// =============================================================================
// READ INTERFACES - Owned by external collaborators
// =============================================================================

// PunchPage is one bounded page of the raw punch feed, ordered by timestamp.
type PunchPage struct {
	Punches    []RawPunch
	NextCursor string // empty = no more pages
}

// PunchReader is the paginated raw punch feed.
type PunchReader interface {
	// ReadPunches returns punches for the identifier set in [from, to),
	// ordered by timestamp, starting after cursor ("" = first page).
	ReadPunches(ctx context.Context, ids []IdentifierID, from, to time.Time, cursor string, limit int) (PunchPage, error)
}

// IdentityMap resolves biometric identifiers to employees. Read-only here;
// lifecycle is managed by the registration collaborator.
type IdentityMap interface {
	// IdentifiersFor returns every identifier assigned to each employee.
	IdentifiersFor(ctx context.Context, employees []EmployeeID) (map[EmployeeID][]IdentifierID, error)

	// EmployeeFor resolves one identifier. ok=false when unmapped.
	EmployeeFor(ctx context.Context, id IdentifierID) (EmployeeID, bool, error)
}

// PlanReader supplies planned shifts from the planning collaborator.
type PlanReader interface {
	PlansInRange(ctx context.Context, employees []EmployeeID, from, to CivilDate) ([]PlannedShift, error)
}

// HolidaySet answers whether a civil date is a holiday and whether work on
// it stays ordinary. A workable holiday (dia no laborable) is observed on
// the calendar but does not trigger the 100% override.
type HolidaySet interface {
	HolidayOn(ctx context.Context, d CivilDate) (isHoliday, isWorkable bool, err error)
}

// =============================================================================
// RESULT STORE - Derived outputs, idempotently upserted
// =============================================================================

// ResultStore persists the derived outputs of one computation. All writes are
// upserts keyed by (employee, work date) so reruns are idempotent.
type ResultStore interface {
	// UpsertSession writes the authoritative session for its key.
	UpsertSession(ctx context.Context, s WorkSession) error

	// UpsertHours writes the classified hours for the key.
	UpsertHours(ctx context.Context, employee EmployeeID, date CivilDate, h ClassifiedHours) error

	// UpsertCompliance writes the compliance result for the key.
	UpsertCompliance(ctx context.Context, r ComplianceResult) error

	// DeleteDerived discards previously derived sessions/hours/compliance for
	// the window before a full recomputation. Inconsistency flags are NOT
	// deleted: they are durable review signals cleared only by explicit
	// resolution.
	DeleteDerived(ctx context.Context, employees []EmployeeID, from, to CivilDate) error

	// RaiseFlag records a data-quality condition. When an unresolved flag
	// with the same (employee, date, kind) already exists it is kept, not
	// duplicated, so reruns over identical data are idempotent.
	RaiseFlag(ctx context.Context, f InconsistencyFlag) error
}

// =============================================================================
// RESULT READERS - For the API surface
// =============================================================================

type HoursRecord struct {
	EmployeeID EmployeeID
	Date       CivilDate
	Hours      ClassifiedHours
}

type ResultReader interface {
	HoursInRange(ctx context.Context, employee EmployeeID, from, to CivilDate) ([]HoursRecord, error)
	ComplianceInRange(ctx context.Context, employee EmployeeID, from, to CivilDate) ([]ComplianceResult, error)
	Flags(ctx context.Context, from, to CivilDate, unresolvedOnly bool) ([]InconsistencyFlag, error)

	// ResolveFlag marks a flag resolved by an explicit human action.
	ResolveFlag(ctx context.Context, flagID, resolvedBy, note string) error
}

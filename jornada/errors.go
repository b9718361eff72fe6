/*
errors.go - Centralized error types for the hours engine

PURPOSE:
  Sentinel errors plus structured errors carrying per-record context.
  Per-(employee, date) failures are isolated: a bad record for one employee
  is collected into the run report, never thrown across the batch.

ERROR CATEGORIES:
  1. Input errors - unknown identifiers, malformed windows
  2. Store errors - persistence failures surfaced to the caller
  3. Data-quality conditions - NOT errors; they become InconsistencyFlags
*/
package jornada

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownIdentifier is reported when a punch carries an identifier the
	// identity map does not resolve to any employee.
	ErrUnknownIdentifier = errors.New("unknown biometric identifier")

	// ErrInvalidWindow is returned when a recompute window is malformed.
	ErrInvalidWindow = errors.New("invalid window: end before start")

	// ErrFlagNotFound is returned when resolving a flag that does not exist.
	ErrFlagNotFound = errors.New("inconsistency flag not found")

	// ErrFlagAlreadyResolved is returned when resolving a flag twice.
	ErrFlagAlreadyResolved = errors.New("inconsistency flag already resolved")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// UnknownIdentifierError carries the identifier that failed to resolve.
type UnknownIdentifierError struct {
	IdentifierID IdentifierID
	At           string // RFC3339 timestamp of the offending punch
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown biometric identifier %s at %s", e.IdentifierID, e.At)
}

func (e *UnknownIdentifierError) Unwrap() error { return ErrUnknownIdentifier }

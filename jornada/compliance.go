/*
compliance.go - Plan vs. actual attendance evaluation

PURPOSE:
  Classifies one employee/date pair's actual attendance against its planned
  shift using fixed, asymmetric tolerance windows.

RULES, IN ORDER:
  1. No plan for the date            -> sin_planificacion
  2. Planned REST                    -> franco
  3. Planned ABSENT                  -> ausente (carries the reason)
  4. Planned WORKING                 -> tolerance evaluation

TOLERANCES (minutes, negative = early):
  entry:  -60 .. +30
  exit:   -30 .. +120

  The evaluator never infers success from missing information: zero punches
  on a planned working day, or a single-sided session, resolves to the
  reviewable no_determinar state, never to a false cumplido. A day whose
  only punch is an unpaired exit still carries the exit delta, so the
  reviewer sees the side that is known.
*/
package jornada

import (
	"math"
	"time"
)

// Tolerance constants. Fixed business policy, deliberately asymmetric.
const (
	EntryEarlyToleranceMin = 60
	EntryLateToleranceMin  = 30
	ExitEarlyToleranceMin  = 30
	ExitLateToleranceMin   = 120
)

// ComplianceEvaluator compares a planned shift against the authoritative
// resolved session for the same (employee, date).
type ComplianceEvaluator struct{}

// Evaluate produces the compliance result for one key. plan and session may
// each be nil when the corresponding data is absent. orphanExit is the day's
// last exit without a preceding entry: it never credits hours, but when no
// session exists it still lets the exit side be evaluated.
func (ComplianceEvaluator) Evaluate(employee EmployeeID, date CivilDate, plan *PlannedShift, session *WorkSession, orphanExit *time.Time) ComplianceResult {
	res := ComplianceResult{EmployeeID: employee, Date: date}

	if plan == nil {
		res.Status = ComplianceUnplanned
		return res
	}

	switch plan.Status {
	case ShiftRest:
		res.Status = ComplianceDayOff
		return res
	case ShiftAbsent:
		res.Status = ComplianceAbsent
		res.AbsenceReason = plan.AbsenceReason
		return res
	}

	// Planned WORKING from here on.
	if session == nil && orphanExit == nil {
		res.Status = ComplianceUndetermined
		res.Notes = "no punches recorded on a planned working day"
		return res
	}

	if session != nil && plan.PlannedEntry != nil {
		d := deltaMinutes(session.EntryAt, *plan.PlannedEntry)
		ok := d >= -EntryEarlyToleranceMin && d <= EntryLateToleranceMin
		res.EntryDeltaMin = &d
		res.EntryOK = &ok
	}
	actualExit := orphanExit
	if session != nil {
		actualExit = session.ExitAt
	}
	if plan.PlannedExit != nil && actualExit != nil {
		d := deltaMinutes(*actualExit, *plan.PlannedExit)
		ok := d >= -ExitEarlyToleranceMin && d <= ExitLateToleranceMin
		res.ExitDeltaMin = &d
		res.ExitOK = &ok
	}

	switch {
	case res.EntryOK == nil && res.ExitOK == nil:
		res.Status = ComplianceUndetermined
		res.Notes = "neither entry nor exit could be evaluated"
	case res.EntryOK == nil:
		res.Status = ComplianceUndetermined
		res.Notes = "entry side unknown"
	case res.ExitOK == nil:
		res.Status = ComplianceUndetermined
		res.Notes = "exit side unknown"
	case *res.EntryOK && *res.ExitOK:
		res.Status = ComplianceOK
	default:
		res.Status = ComplianceUndetermined
		res.Notes = discrepancyNote(*res.EntryOK, *res.ExitOK)
	}
	return res
}

func discrepancyNote(entryOK, exitOK bool) string {
	switch {
	case !entryOK && !exitOK:
		return "discrepancy at entry and exit"
	case !entryOK:
		return "discrepancy at entry"
	default:
		return "discrepancy at exit"
	}
}

func deltaMinutes(actual, planned time.Time) int {
	return int(math.Round(actual.Sub(planned).Minutes()))
}

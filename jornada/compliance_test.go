package jornada_test

import (
	"testing"
	"time"

	"github.com/angeant/sicamar-hours/jornada"
)

func workingPlan(entryH, entryM, exitH, exitM int) *jornada.PlannedShift {
	cal := testCal()
	entry := cal.At(monday, entryH, entryM)
	exit := cal.At(monday, exitH, exitM)
	return &jornada.PlannedShift{
		EmployeeID:   "emp-1",
		Date:         monday,
		Status:       jornada.ShiftWorking,
		PlannedEntry: &entry,
		PlannedExit:  &exit,
	}
}

func actualSession(entryH, entryM, exitH, exitM int) *jornada.WorkSession {
	cal := testCal()
	entry := cal.At(monday, entryH, entryM)
	exit := cal.At(monday, exitH, exitM)
	return &jornada.WorkSession{
		EmployeeID: "emp-1",
		WorkDate:   monday,
		EntryAt:    entry,
		ExitAt:     &exit,
		Duration:   exit.Sub(entry),
	}
}

func evaluate(plan *jornada.PlannedShift, session *jornada.WorkSession) jornada.ComplianceResult {
	var eval jornada.ComplianceEvaluator
	return eval.Evaluate("emp-1", monday, plan, session, nil)
}

// =============================================================================
// PLAN-LEVEL SHORT CIRCUITS
// =============================================================================

func TestEvaluate_NoPlan(t *testing.T) {
	res := evaluate(nil, actualSession(8, 0, 17, 0))
	if res.Status != jornada.ComplianceUnplanned {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceUnplanned)
	}
}

func TestEvaluate_RestDay(t *testing.T) {
	plan := &jornada.PlannedShift{EmployeeID: "emp-1", Date: monday, Status: jornada.ShiftRest}
	res := evaluate(plan, nil)
	if res.Status != jornada.ComplianceDayOff {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceDayOff)
	}
}

func TestEvaluate_PlannedAbsenceCarriesReason(t *testing.T) {
	plan := &jornada.PlannedShift{
		EmployeeID: "emp-1", Date: monday,
		Status: jornada.ShiftAbsent, AbsenceReason: "licencia medica",
	}
	res := evaluate(plan, nil)
	if res.Status != jornada.ComplianceAbsent {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceAbsent)
	}
	if res.AbsenceReason != "licencia medica" {
		t.Errorf("absence reason = %q", res.AbsenceReason)
	}
}

// =============================================================================
// TOLERANCE WINDOWS
// =============================================================================

func TestEvaluate_WithinTolerances(t *testing.T) {
	// GIVEN: plan 08:00-17:00, actual 08:20-17:30 (+20 entry, +30 exit)
	res := evaluate(workingPlan(8, 0, 17, 0), actualSession(8, 20, 17, 30))

	if res.Status != jornada.ComplianceOK {
		t.Fatalf("status = %s (%s), want %s", res.Status, res.Notes, jornada.ComplianceOK)
	}
	if *res.EntryDeltaMin != 20 || *res.ExitDeltaMin != 30 {
		t.Errorf("deltas = %d/%d, want 20/30", *res.EntryDeltaMin, *res.ExitDeltaMin)
	}
}

func TestEvaluate_EntryToleranceBoundaries(t *testing.T) {
	cases := []struct {
		name           string
		entryH, entryM int
		wantOK         bool
	}{
		{"exactly 30 late", 8, 30, true},
		{"31 late", 8, 31, false},
		{"exactly 60 early", 7, 0, true},
		{"61 early", 6, 59, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := evaluate(workingPlan(8, 0, 17, 0), actualSession(tc.entryH, tc.entryM, 17, 0))
			if *res.EntryOK != tc.wantOK {
				t.Errorf("entry OK = %v, want %v (delta %d)", *res.EntryOK, tc.wantOK, *res.EntryDeltaMin)
			}
			wantStatus := jornada.ComplianceOK
			if !tc.wantOK {
				wantStatus = jornada.ComplianceUndetermined
			}
			if res.Status != wantStatus {
				t.Errorf("status = %s, want %s", res.Status, wantStatus)
			}
		})
	}
}

func TestEvaluate_ExitToleranceBoundaries(t *testing.T) {
	cases := []struct {
		name         string
		exitH, exitM int
		wantOK       bool
	}{
		{"exactly 30 early", 16, 30, true},
		{"31 early", 16, 29, false},
		{"exactly 120 late", 19, 0, true},
		{"121 late", 19, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := evaluate(workingPlan(8, 0, 17, 0), actualSession(8, 0, tc.exitH, tc.exitM))
			if *res.ExitOK != tc.wantOK {
				t.Errorf("exit OK = %v, want %v (delta %d)", *res.ExitOK, tc.wantOK, *res.ExitDeltaMin)
			}
		})
	}
}

func TestEvaluate_DiscrepancyNoteNamesBothSides(t *testing.T) {
	// Entry 2h early and exit 3h late: both sides out of tolerance.
	res := evaluate(workingPlan(8, 0, 17, 0), actualSession(6, 0, 20, 0))
	if res.Status != jornada.ComplianceUndetermined {
		t.Fatalf("status = %s, want %s", res.Status, jornada.ComplianceUndetermined)
	}
	if res.Notes != "discrepancy at entry and exit" {
		t.Errorf("notes = %q", res.Notes)
	}
}

// =============================================================================
// MISSING DATA NEVER MEANS COMPLIANT
// =============================================================================

func TestEvaluate_NoPunchesOnWorkingDay(t *testing.T) {
	res := evaluate(workingPlan(8, 0, 17, 0), nil)
	if res.Status != jornada.ComplianceUndetermined {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceUndetermined)
	}
	if res.EntryOK != nil || res.ExitOK != nil {
		t.Error("no punches must leave both sides unevaluated")
	}
}

func TestEvaluate_MissingExitLeavesExitUnknown(t *testing.T) {
	// GIVEN: an open session (nil exit) against a full working plan
	// THEN: entry is evaluated, exit stays unknown, status never OK
	cal := testCal()
	entry := cal.At(monday, 8, 0)
	session := &jornada.WorkSession{
		EmployeeID: "emp-1", WorkDate: monday,
		EntryAt: entry, ExitAt: nil, Duration: 8 * time.Hour,
	}

	res := evaluate(workingPlan(8, 0, 17, 0), session)

	if res.Status != jornada.ComplianceUndetermined {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceUndetermined)
	}
	if res.EntryOK == nil || !*res.EntryOK {
		t.Error("entry side should evaluate OK")
	}
	if res.ExitOK != nil {
		t.Error("exit side must stay unknown for an open session")
	}
	if res.Notes != "exit side unknown" {
		t.Errorf("notes = %q", res.Notes)
	}
}

func TestEvaluate_LoneExitEvaluatesExitSide(t *testing.T) {
	// GIVEN: a working plan 08:00-17:00 whose only punch is an unpaired
	//        exit at 17:00 - no session exists, but the exit is known
	cal := testCal()
	exit := cal.At(monday, 17, 0)

	var eval jornada.ComplianceEvaluator
	res := eval.Evaluate("emp-1", monday, workingPlan(8, 0, 17, 0), nil, &exit)

	// THEN: the exit side is evaluated, the entry side stays unknown
	if res.Status != jornada.ComplianceUndetermined {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceUndetermined)
	}
	if res.ExitOK == nil || !*res.ExitOK {
		t.Fatal("exit side should evaluate OK")
	}
	if *res.ExitDeltaMin != 0 {
		t.Errorf("exit delta = %d, want 0", *res.ExitDeltaMin)
	}
	if res.EntryOK != nil || res.EntryDeltaMin != nil {
		t.Error("entry side must stay unknown without an entry punch")
	}
	if res.Notes != "entry side unknown" {
		t.Errorf("notes = %q", res.Notes)
	}
}

func TestEvaluate_PlanWithoutScheduledTimes(t *testing.T) {
	// A WORKING plan lacking planned times cannot be evaluated on either side.
	plan := &jornada.PlannedShift{EmployeeID: "emp-1", Date: monday, Status: jornada.ShiftWorking}
	res := evaluate(plan, actualSession(8, 0, 17, 0))
	if res.Status != jornada.ComplianceUndetermined {
		t.Errorf("status = %s, want %s", res.Status, jornada.ComplianceUndetermined)
	}
	if res.Notes != "neither entry nor exit could be evaluated" {
		t.Errorf("notes = %q", res.Notes)
	}
}

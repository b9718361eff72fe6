package jornada_test

import (
	"testing"
	"time"

	"github.com/angeant/sicamar-hours/jornada"
)

func sessionAt(d jornada.CivilDate, entryH int, dur time.Duration, complete bool) jornada.WorkSession {
	cal := testCal()
	entry := cal.At(d, entryH, 0)
	s := jornada.WorkSession{
		EmployeeID: "emp-1",
		WorkDate:   d,
		EntryAt:    entry,
		Duration:   dur,
	}
	if complete {
		exit := entry.Add(dur)
		s.ExitAt = &exit
	}
	return s
}

func TestConsolidate_CompleteBeatsIncomplete(t *testing.T) {
	// GIVEN: an open 8h session and a shorter complete one on the same date
	open := sessionAt(monday, 8, 8*time.Hour, false)
	complete := sessionAt(monday, 9, 6*time.Hour, true)

	kept, collisions := jornada.ConsolidateSessions([]jornada.WorkSession{open, complete})

	if len(kept) != 1 || !kept[0].Complete() {
		t.Fatalf("the complete session must win, got %+v", kept)
	}
	if len(collisions) != 1 || len(collisions[0].Dropped) != 1 {
		t.Errorf("collision must surface the dropped session, got %+v", collisions)
	}
}

func TestConsolidate_LongerDurationWins(t *testing.T) {
	short := sessionAt(monday, 8, 4*time.Hour, true)
	long := sessionAt(monday, 9, 8*time.Hour, true)

	kept, _ := jornada.ConsolidateSessions([]jornada.WorkSession{short, long})

	if len(kept) != 1 || kept[0].Duration != 8*time.Hour {
		t.Errorf("the longer session must win, got %+v", kept)
	}
}

func TestConsolidate_TieBreaksOnEarlierEntry(t *testing.T) {
	early := sessionAt(monday, 8, 8*time.Hour, true)
	late := sessionAt(monday, 10, 8*time.Hour, true)

	kept, _ := jornada.ConsolidateSessions([]jornada.WorkSession{late, early})

	if len(kept) != 1 || !kept[0].EntryAt.Equal(early.EntryAt) {
		t.Errorf("the earlier entry must win the tie, got %+v", kept)
	}
}

func TestConsolidate_DeterministicForAnyInputOrder(t *testing.T) {
	a := sessionAt(monday, 8, 8*time.Hour, true)
	b := sessionAt(monday, 9, 6*time.Hour, true)
	c := sessionAt(monday.AddDays(1), 8, 8*time.Hour, true)

	kept1, _ := jornada.ConsolidateSessions([]jornada.WorkSession{a, b, c})
	kept2, _ := jornada.ConsolidateSessions([]jornada.WorkSession{c, b, a})

	if len(kept1) != 2 || len(kept2) != 2 {
		t.Fatalf("expected 2 sessions each, got %d/%d", len(kept1), len(kept2))
	}
	for i := range kept1 {
		if kept1[i] != kept2[i] {
			t.Errorf("order-dependent result at %d: %+v vs %+v", i, kept1[i], kept2[i])
		}
	}
}

func TestConsolidate_DistinctDatesUntouched(t *testing.T) {
	a := sessionAt(monday, 8, 8*time.Hour, true)
	b := sessionAt(monday.AddDays(1), 8, 8*time.Hour, true)

	kept, collisions := jornada.ConsolidateSessions([]jornada.WorkSession{a, b})

	if len(kept) != 2 || len(collisions) != 0 {
		t.Errorf("distinct dates must pass through, got %d kept, %d collisions", len(kept), len(collisions))
	}
}

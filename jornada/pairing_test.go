package jornada_test

import (
	"strings"
	"testing"
	"time"

	"github.com/angeant/sicamar-hours/jornada"
)

func newResolver() *jornada.SessionResolver {
	return &jornada.SessionResolver{Cal: testCal(), Jornada: jornada.HoursOf(8)}
}

func punch(pt jornada.PunchType, at time.Time) jornada.RawPunch {
	return jornada.RawPunch{IdentifierID: "fp-1", Type: pt, At: at}
}

func TestPair_SimpleDay(t *testing.T) {
	// GIVEN: a clean entry/exit pair on one weekday
	cal := testCal()
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchEntry, cal.At(monday, 8, 0)),
		punch(jornada.PunchExit, cal.At(monday, 17, 0)),
	})

	if len(out.Sessions) != 1 || len(out.Flags) != 0 {
		t.Fatalf("expected 1 session and 0 flags, got %d/%d", len(out.Sessions), len(out.Flags))
	}
	s := out.Sessions[0]
	if !s.WorkDate.Equal(monday) || !s.Complete() || s.Duration != 9*time.Hour {
		t.Errorf("unexpected session: %+v", s)
	}
}

func TestPair_NightShiftAttributedToEntryDate(t *testing.T) {
	// GIVEN: a shift entering Monday 23:30 and exiting Tuesday 07:30
	// WHEN: paired
	// THEN: the whole 8h session is credited to Monday
	cal := testCal()
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchEntry, cal.At(monday, 23, 30)),
		punch(jornada.PunchExit, cal.At(monday.AddDays(1), 7, 30)),
	})

	if len(out.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(out.Sessions))
	}
	s := out.Sessions[0]
	if !s.WorkDate.Equal(monday) {
		t.Errorf("night shift attributed to %s, want %s", s.WorkDate, monday)
	}
	if s.Duration != 8*time.Hour {
		t.Errorf("duration = %v, want 8h", s.Duration)
	}
}

func TestPair_DuplicateEntryIgnored(t *testing.T) {
	// GIVEN: two consecutive entries before the exit (operator error)
	// THEN: the first entry wins, the second is noted, one session results
	cal := testCal()
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchEntry, cal.At(monday, 8, 0)),
		punch(jornada.PunchEntry, cal.At(monday, 8, 5)),
		punch(jornada.PunchExit, cal.At(monday, 16, 0)),
	})

	if len(out.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(out.Sessions))
	}
	if out.Sessions[0].Duration != 8*time.Hour {
		t.Errorf("first entry must win: duration = %v, want 8h", out.Sessions[0].Duration)
	}
	if len(out.Notes) != 1 || !strings.Contains(out.Notes[0], "duplicate entry") {
		t.Errorf("expected a duplicate-entry note, got %v", out.Notes)
	}
}

func TestPair_OverlongPairingDiscarded(t *testing.T) {
	// GIVEN: an entry whose exit arrives 24h later (device noise)
	// THEN: no session, no flag - just a note; the scan continues and the
	//       following clean day still pairs
	cal := testCal()
	tuesday := monday.AddDays(1)
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchEntry, cal.At(monday, 8, 0)),
		punch(jornada.PunchExit, cal.At(tuesday, 8, 0)),
		punch(jornada.PunchEntry, cal.At(tuesday, 9, 0)),
		punch(jornada.PunchExit, cal.At(tuesday, 17, 0)),
	})

	if len(out.Sessions) != 1 {
		t.Fatalf("expected only the clean Tuesday session, got %d", len(out.Sessions))
	}
	if !out.Sessions[0].WorkDate.Equal(tuesday) {
		t.Errorf("kept session on %s, want %s", out.Sessions[0].WorkDate, tuesday)
	}
	if len(out.Flags) != 0 {
		t.Errorf("noisy pairings must not raise flags, got %v", out.Flags)
	}
	if len(out.Notes) != 1 || !strings.Contains(out.Notes[0], string(jornada.FlagInvalidSession)) {
		t.Errorf("expected an invalid-session note, got %v", out.Notes)
	}
}

func TestPair_LoneExitFlagsMissingEntry(t *testing.T) {
	cal := testCal()
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchExit, cal.At(monday, 17, 0)),
	})

	if len(out.Sessions) != 0 {
		t.Fatalf("a lone exit must produce no session, got %d", len(out.Sessions))
	}
	if len(out.Flags) != 1 || out.Flags[0].Kind != jornada.FlagMissingEntry {
		t.Fatalf("expected one missing-entry flag, got %v", out.Flags)
	}
	if !out.Flags[0].Date.Equal(monday) {
		t.Errorf("flag date = %s, want %s", out.Flags[0].Date, monday)
	}
	// The unpaired exit is surfaced so compliance can still judge it.
	if at, ok := out.OrphanExits[monday]; !ok || !at.Equal(cal.At(monday, 17, 0)) {
		t.Errorf("orphan exit for %s = %v, want 17:00", monday, at)
	}
	if !out.ObservedDates[monday] {
		t.Errorf("%s saw a punch and must be marked observed", monday)
	}
}

func TestPair_OpenEntryCreditsJornadaAndFlags(t *testing.T) {
	// GIVEN: an entry with no matching exit by the end of the stream
	// THEN: a session with nil exit, credited the expected jornada, plus a
	//       missing-exit flag
	cal := testCal()
	out := newResolver().Pair("emp-1", []jornada.RawPunch{
		punch(jornada.PunchEntry, cal.At(monday, 9, 0)),
	})

	if len(out.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(out.Sessions))
	}
	s := out.Sessions[0]
	if s.Complete() {
		t.Error("open session must have a nil exit")
	}
	if s.Duration != 8*time.Hour {
		t.Errorf("credited duration = %v, want the 8h jornada", s.Duration)
	}
	if len(out.Flags) != 1 || out.Flags[0].Kind != jornada.FlagMissingExit {
		t.Fatalf("expected one missing-exit flag, got %v", out.Flags)
	}
}

func TestPair_EmptyStream(t *testing.T) {
	out := newResolver().Pair("emp-1", nil)
	if len(out.Sessions) != 0 || len(out.Flags) != 0 || len(out.Notes) != 0 {
		t.Errorf("empty stream must produce nothing, got %+v", out)
	}
}

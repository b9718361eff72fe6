/*
pairing.go - Entry/exit pairing state machine

PURPOSE:
  Scans one employee's chronological punch stream and pairs ENTRY/EXIT
  events into work sessions. The pairing logic is an explicit two-state
  machine {awaitingEntry, awaitingExit} so every discard/flag condition is
  auditable:

    awaitingEntry --ENTRY--> awaitingExit          (open session)
    awaitingEntry --EXIT---> awaitingEntry         (missing-entry flag, 0h)
    awaitingExit  --ENTRY--> awaitingExit          (operator error, ignored)
    awaitingExit  --EXIT---> awaitingEntry         (close; discard if noisy)

  A closed session is attributed to the calendar date of its ENTRY in the
  employer's zone, so a night shift starting before midnight is credited
  entirely to the day it began. A session still open when the window ends
  is recorded with a nil exit, flagged missing-exit, and optimistically
  credited the expected jornada length.

FAILURE SEMANTICS:
  Invalid pairings (duration <= 0 or > 14h) are device noise: dropped per
  session with zero credit, never aborting the scan. Flags are advisory
  data for human review, not errors.
*/
package jornada

import (
	"fmt"
	"time"
)

// MaxSessionDuration is the sanity ceiling on a single paired session.
// Anything longer is presumed device noise and discarded.
const MaxSessionDuration = 14 * time.Hour

type pairingState int

const (
	awaitingEntry pairingState = iota
	awaitingExit
)

// FlagEvent is a data-quality condition observed during pairing, before it
// is persisted as an InconsistencyFlag.
type FlagEvent struct {
	EmployeeID EmployeeID
	Date       CivilDate
	Kind       FlagKind
	Detail     string
}

// PairingOutcome is everything one scan produces: sessions, flag events and
// report notes. Nothing here mutates the raw punches.
type PairingOutcome struct {
	Sessions []WorkSession
	Flags    []FlagEvent

	// ObservedDates marks every work date that saw at least one punch, even
	// punches that never formed a session. A date with an observed punch is
	// not a no-punches day.
	ObservedDates map[CivilDate]bool

	// OrphanExits records, per work date, the last exit that arrived with no
	// preceding entry. The session credit stays zero, but compliance can
	// still evaluate the exit side from it.
	OrphanExits map[CivilDate]time.Time

	// Notes records ignored double entries and discarded noisy pairings for
	// the run report. These are debug-level facts, not persisted flags.
	Notes []string
}

// SessionResolver pairs punches into sessions for one employee at a time.
type SessionResolver struct {
	Cal     Calendar
	Jornada Hours // expected ordinary jornada length, credited on missing exit
}

// Pair scans punches in timestamp order. The input must already be sorted
// (Resolver.GroupByEmployee guarantees it).
func (sr *SessionResolver) Pair(employee EmployeeID, punches []RawPunch) PairingOutcome {
	out := PairingOutcome{
		ObservedDates: make(map[CivilDate]bool),
		OrphanExits:   make(map[CivilDate]time.Time),
	}
	state := awaitingEntry
	var openEntry time.Time

	for _, p := range punches {
		out.ObservedDates[sr.Cal.WorkDate(p.At)] = true
		switch {
		case p.Type == PunchEntry && state == awaitingEntry:
			openEntry = p.At
			state = awaitingExit

		case p.Type == PunchEntry && state == awaitingExit:
			// Second entry before a matching exit: operator error, the first
			// entry wins.
			out.Notes = append(out.Notes, fmt.Sprintf(
				"%s: duplicate entry at %s ignored (session open since %s)",
				employee, p.At.Format(time.RFC3339), openEntry.Format(time.RFC3339)))

		case p.Type == PunchExit && state == awaitingExit:
			dur := p.At.Sub(openEntry)
			if dur <= 0 || dur > MaxSessionDuration {
				// Device noise: zero credit, state resets, scan continues.
				out.Notes = append(out.Notes, fmt.Sprintf(
					"%s: %s pairing %s..%s discarded (duration %s)",
					employee, FlagInvalidSession, openEntry.Format(time.RFC3339),
					p.At.Format(time.RFC3339), dur))
			} else {
				exit := p.At
				out.Sessions = append(out.Sessions, WorkSession{
					EmployeeID: employee,
					WorkDate:   sr.Cal.WorkDate(openEntry),
					EntryAt:    openEntry,
					ExitAt:     &exit,
					Duration:   dur,
				})
			}
			state = awaitingEntry

		case p.Type == PunchExit && state == awaitingEntry:
			date := sr.Cal.WorkDate(p.At)
			out.OrphanExits[date] = p.At
			out.Flags = append(out.Flags, FlagEvent{
				EmployeeID: employee,
				Date:       date,
				Kind:       FlagMissingEntry,
				Detail:     fmt.Sprintf("exit at %s without a preceding entry", p.At.Format(time.RFC3339)),
			})
		}
	}

	// Window ended with an entry still open: optimistic jornada credit plus
	// a missing-exit flag for human review.
	if state == awaitingExit {
		date := sr.Cal.WorkDate(openEntry)
		out.Sessions = append(out.Sessions, WorkSession{
			EmployeeID: employee,
			WorkDate:   date,
			EntryAt:    openEntry,
			ExitAt:     nil,
			Duration:   sr.Jornada.Duration(),
		})
		out.Flags = append(out.Flags, FlagEvent{
			EmployeeID: employee,
			Date:       date,
			Kind:       FlagMissingExit,
			Detail:     fmt.Sprintf("entry at %s has no matching exit; credited expected jornada of %s hours", openEntry.Format(time.RFC3339), sr.Jornada),
		})
	}

	return out
}

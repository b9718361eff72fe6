/*
consolidate.go - Duplicate-session resolution

When a full-window recomputation yields more than one session keyed to the
same (employee, work date) - duplicated identifiers or device clock skew can
cause this - exactly one authoritative session must win:

  1. A session with both entry and exit beats one missing its exit.
  2. Between two complete sessions, the greater total duration wins
     (treated as the more complete record).
  3. Remaining ties break on the earlier entry, for determinism.

This is a heuristic, not a correctness proof: it can mask a genuine
double-booking or identity-mapping error. Collisions are therefore surfaced
in the run report for review rather than resolved silently.
*/
package jornada

import (
	"fmt"
	"sort"
)

// Collision records a duplicate (employee, workDate) that consolidation had
// to resolve.
type Collision struct {
	EmployeeID EmployeeID
	Date       CivilDate
	Kept       WorkSession
	Dropped    []WorkSession
}

func (c Collision) String() string {
	return fmt.Sprintf("%s %s: %d duplicate session(s) resolved, kept entry %s",
		c.EmployeeID, c.Date, len(c.Dropped), c.Kept.EntryAt.Format("15:04"))
}

// ConsolidateSessions reduces a session list to at most one per work date.
// The result is sorted by work date; output order is deterministic for any
// input order.
func ConsolidateSessions(sessions []WorkSession) ([]WorkSession, []Collision) {
	byDate := make(map[CivilDate][]WorkSession)
	for _, s := range sessions {
		byDate[s.WorkDate] = append(byDate[s.WorkDate], s)
	}

	var out []WorkSession
	var collisions []Collision
	for date, group := range byDate {
		winner := group[0]
		for _, cand := range group[1:] {
			if preferSession(cand, winner) {
				winner = cand
			}
		}
		out = append(out, winner)

		if len(group) > 1 {
			var dropped []WorkSession
			for _, s := range group {
				if s != winner {
					dropped = append(dropped, s)
				}
			}
			collisions = append(collisions, Collision{
				EmployeeID: winner.EmployeeID,
				Date:       date,
				Kept:       winner,
				Dropped:    dropped,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate.Before(out[j].WorkDate) })
	sort.Slice(collisions, func(i, j int) bool { return collisions[i].Date.Before(collisions[j].Date) })
	return out, collisions
}

// preferSession reports whether a should replace b as the authoritative
// session for a work date.
func preferSession(a, b WorkSession) bool {
	if a.Complete() != b.Complete() {
		return a.Complete()
	}
	if a.Duration != b.Duration {
		return a.Duration > b.Duration
	}
	return a.EntryAt.Before(b.EntryAt)
}

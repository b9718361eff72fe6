/*
grid.go - Half-hour grid overtime classification

PURPOSE:
  Turns one WorkSession plus its expected jornada length and day-type
  context into ClassifiedHours. This is the heart of the engine.

THE GRID RULE:
  Overtime is discretized into fixed 30-minute slots aligned to :00/:30
  local clock boundaries. A slot is payable ONLY if the session fully
  covers it (entry <= slot start AND exit >= slot end). Partial coverage
  forfeits the whole slot - there is no proration. Each payable slot pays
  0.5h into the diurnal or nocturnal bucket by its start hour (nocturnal
  = [21:00, 06:00)).

CRITICAL-PERIOD OVERRIDE:
  Sunday (any hour), Saturday from 13:00, and holidays pay the 100% rate
  for EVERYTHING worked, including what would otherwise be ordinary
  jornada time. NormalDisplacedTo100 records how much ordinary allowance
  was displaced, for downstream payroll visibility. A Saturday session
  crossing 13:00 is split at the cutoff and each half classified under its
  own rules.

  Pure function over its inputs; no I/O, no side effects.
*/
package jornada

import "time"

// GridClassifier discretizes a session into payable half-hour buckets.
type GridClassifier struct {
	Cal Calendar
}

// Classify produces the classified hours for one session.
//
// INVARIANT: every bucket is a non-negative multiple of 0.5 and the bucket
// sum never exceeds the session duration floored to the grid.
func (g *GridClassifier) Classify(s WorkSession, jornada Hours, dayType DayType) ClassifiedHours {
	entry := s.EntryAt
	exit := g.effectiveExit(s)

	if dayType.FullOverride() {
		return g.overridePass(entry, exit, jornada)
	}

	if dayType == DaySaturday {
		cutoff := g.Cal.SaturdayCutoff(s.WorkDate)
		switch {
		case !exit.After(cutoff):
			// Entirely before 13:00: ordinary weekday rules.
			return g.ordinaryPass(entry, exit, jornada)
		case !entry.Before(cutoff):
			// Entirely at/after 13:00: full override.
			return g.overridePass(entry, exit, jornada)
		default:
			// Crosses the cutoff: the two halves follow different rules and
			// must be classified independently.
			pre := g.ordinaryPass(entry, cutoff, jornada)
			post := g.overridePass(cutoff, exit, jornada.Sub(pre.Normal))
			return pre.Merge(post)
		}
	}

	return g.ordinaryPass(entry, exit, jornada)
}

// effectiveExit returns the real exit, or the optimistic jornada-credit exit
// for a session flagged missing-exit.
func (g *GridClassifier) effectiveExit(s WorkSession) time.Time {
	if s.ExitAt != nil {
		return *s.ExitAt
	}
	return s.EntryAt.Add(s.Duration)
}

// ordinaryPass applies weekday rules to [entry, exit): time up to the jornada
// allowance is normal; only fully covered grid slots beyond the scheduled
// jornada end pay, at the 50% rate.
func (g *GridClassifier) ordinaryPass(entry, exit time.Time, jornada Hours) ClassifiedHours {
	var out ClassifiedHours
	worked := exit.Sub(entry)
	if worked <= 0 {
		return out
	}

	out.Normal = GridHours(worked).Min(jornada)

	scheduledEnd := entry.Add(jornada.Duration())
	for slot := g.Cal.AlignToGrid(scheduledEnd); !slot.Add(SlotLength).After(exit); slot = slot.Add(SlotLength) {
		if g.Cal.IsNocturnal(slot) {
			out.Extra50Nocturnal = out.Extra50Nocturnal.Add(HalfHours(1))
		} else {
			out.Extra50Diurnal = out.Extra50Diurnal.Add(HalfHours(1))
		}
	}
	return out
}

// overridePass reclassifies [entry, exit) entirely into the 100% buckets.
// allowance is how much ordinary jornada time remained for this span; the
// part of the span that consumes it is recorded as displaced normal time.
func (g *GridClassifier) overridePass(entry, exit time.Time, allowance Hours) ClassifiedHours {
	var out ClassifiedHours
	if !exit.After(entry) {
		return out
	}

	for slot := g.Cal.AlignToGrid(entry); !slot.Add(SlotLength).After(exit); slot = slot.Add(SlotLength) {
		if g.Cal.IsNocturnal(slot) {
			out.Extra100Nocturnal = out.Extra100Nocturnal.Add(HalfHours(1))
		} else {
			out.Extra100Diurnal = out.Extra100Diurnal.Add(HalfHours(1))
		}
	}

	if allowance.IsNegative() {
		allowance = ZeroHours()
	}
	total := out.Extra100Diurnal.Add(out.Extra100Nocturnal)
	out.NormalDisplacedTo100 = total.Min(allowance)
	return out
}

/*
clock.go - Civil-time calendar for the employer's fixed timezone

PURPOSE:
  All local-time decisions in the engine - work-date attribution, day-type
  lookup, the Saturday 13:00 cutoff, half-hour slot boundaries, nocturnal
  hour checks - go through a Calendar that carries an explicitly injected
  *time.Location. Relying on the process-default zone is a correctness
  hazard: the same punch stream would classify differently depending on
  where the batch happens to run.

SEE ALSO:
  - grid.go: walks half-hour slots using Calendar alignment
  - pairing.go: attributes sessions to the entry's civil date
*/
package jornada

import (
	"fmt"
	"time"
)

// SlotLength is the indivisible unit of payable overtime.
const SlotLength = 30 * time.Minute

// Nocturnal window: slot-start hour in [21:00, 06:00).
const (
	nocturnalStartHour = 21
	nocturnalEndHour   = 6
)

// saturdayCutoffHour is the local hour from which Saturday pays like Sunday.
const saturdayCutoffHour = 13

// Calendar resolves instants to civil dates and grid boundaries in one fixed
// employer timezone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads the named IANA zone, e.g. "America/Argentina/Buenos_Aires".
func NewCalendar(zone string) (Calendar, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Calendar{}, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return Calendar{loc: loc}, nil
}

// NewCalendarIn wraps an already-loaded location (tests).
func NewCalendarIn(loc *time.Location) Calendar { return Calendar{loc: loc} }

func (c Calendar) Location() *time.Location { return c.loc }

// WorkDate returns the civil date the instant falls on in the employer zone.
// Session attribution always uses the ENTRY instant, so a night shift that
// starts before midnight is credited entirely to the day it began.
func (c Calendar) WorkDate(t time.Time) CivilDate {
	lt := t.In(c.loc)
	return CivilDate{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// At returns the local instant hh:mm on the given civil date.
func (c Calendar) At(d CivilDate, hour, min int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, min, 0, 0, c.loc)
}

// DayStart returns local midnight of the given civil date.
func (c Calendar) DayStart(d CivilDate) time.Time { return c.At(d, 0, 0) }

// SaturdayCutoff returns 13:00 local on the given date. From this instant on
// a Saturday, the full 100% override applies.
func (c Calendar) SaturdayCutoff(d CivilDate) time.Time {
	return c.At(d, saturdayCutoffHour, 0)
}

// AlignToGrid returns the first :00/:30 boundary at or after t, in local time.
func (c Calendar) AlignToGrid(t time.Time) time.Time {
	lt := t.In(c.loc)
	boundary := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), (lt.Minute()/30)*30, 0, 0, c.loc)
	if boundary.Before(lt) {
		boundary = boundary.Add(SlotLength)
	}
	return boundary
}

// IsNocturnal reports whether a slot starting at t falls in the night window
// [21:00, 06:00) local.
func (c Calendar) IsNocturnal(t time.Time) bool {
	h := t.In(c.loc).Hour()
	return h >= nocturnalStartHour || h < nocturnalEndHour
}

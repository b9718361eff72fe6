/*
pipeline.go - Full-window recomputation

PURPOSE:
  Drives the whole engine over a historical window: reads raw punches
  through a bounded cursor, resolves identities, pairs sessions, applies
  the consolidation policy, classifies hours, evaluates compliance, and
  idempotently upserts every derived record.

DATA FLOW:
  raw punches -> identity resolver -> pairing -> consolidation
             -> (day-type feeds) grid classifier -> classified hours
  classified hours + planned shift -> compliance evaluator -> status

CONCURRENCY:
  Work is sharded by employee with a bounded errgroup: no cross-employee
  state is shared, and within one (employee, date) key every write is an
  upsert, so reruns and overlapping jobs serialize on the store instead of
  interleaving partial writes.

DETERMINISM:
  Identical punches, identity map, plans and holidays always yield
  identical ClassifiedHours and ComplianceResult, however many times and
  in whatever order the computation reruns.

FAILURE SEMANTICS:
  A failure for one employee is recorded in the run report and never
  aborts the others.
*/
package jornada

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angeant/sicamar-hours/metrics"
)

// DefaultPageSize bounds one punch read; windows larger than a page are
// walked with the resumable cursor.
const DefaultPageSize = 500

// DefaultParallelism bounds the per-employee shards in flight.
const DefaultParallelism = 8

// Pipeline wires the engine to its collaborators.
type Pipeline struct {
	Punches    PunchReader
	Identities IdentityMap
	Plans      PlanReader
	Holidays   HolidaySet
	Results    ResultStore

	Cal     Calendar
	Jornada Hours // expected ordinary jornada length

	PageSize    int
	Parallelism int
	Metrics     *metrics.Metrics

	// Now is injected for the future-date check on no-punch days.
	// Defaults to time.Now.
	Now func() time.Time
}

// RunReport summarizes one recomputation. Per-record problems are collected
// here rather than thrown.
type RunReport struct {
	RunID     string
	From, To  CivilDate
	Employees int

	SessionsKept int
	FlagsRaised  int
	Collisions   []Collision
	Notes        []string
	Errors       []string

	StartedAt time.Time
	Duration  time.Duration
}

// RecomputeWindow discards the window's derived records and rebuilds them
// from the raw punches in the window padded by one day on each side, so
// shifts crossing the boundary are caught.
func (p *Pipeline) RecomputeWindow(ctx context.Context, employees []EmployeeID, from, to CivilDate) (*RunReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidWindow, from, to)
	}

	report := &RunReport{
		RunID:     uuid.NewString(),
		From:      from,
		To:        to,
		Employees: len(employees),
		StartedAt: p.now(),
	}
	log.Printf("[Pipeline] run %s: recomputing %s..%s for %d employee(s)", report.RunID, from, to, len(employees))

	idsByEmployee, err := p.Identities.IdentifiersFor(ctx, employees)
	if err != nil {
		return nil, fmt.Errorf("resolve identifiers: %w", err)
	}

	if err := p.Results.DeleteDerived(ctx, employees, from, to); err != nil {
		return nil, fmt.Errorf("discard derived window: %w", err)
	}

	plansByEmployee, err := p.readPlans(ctx, employees, from, to)
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}

	punchesByEmployee, notes, err := p.readWindowPunches(ctx, idsByEmployee, from, to)
	if err != nil {
		return nil, fmt.Errorf("read punches: %w", err)
	}
	report.Notes = append(report.Notes, notes...)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism())

	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			res, err := p.processEmployee(gctx, emp, punchesByEmployee[emp], plansByEmployee[emp], from, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Isolated: one employee's bad data never aborts the rest.
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", emp, err))
				return nil
			}
			report.SessionsKept += res.sessionsKept
			report.FlagsRaised += res.flagsRaised
			report.Collisions = append(report.Collisions, res.collisions...)
			report.Notes = append(report.Notes, res.notes...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(report.Errors)
	sort.Strings(report.Notes)
	sort.Slice(report.Collisions, func(i, j int) bool {
		a, b := report.Collisions[i], report.Collisions[j]
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return a.Date.Before(b.Date)
	})

	report.Duration = p.now().Sub(report.StartedAt)
	p.Metrics.ObserveRun(report.Duration)
	log.Printf("[Pipeline] run %s: %d session(s), %d flag(s), %d collision(s), %d error(s) in %s",
		report.RunID, report.SessionsKept, report.FlagsRaised, len(report.Collisions), len(report.Errors), report.Duration)
	return report, nil
}

// RecomputeDay is the single-day convenience used by the scheduler.
func (p *Pipeline) RecomputeDay(ctx context.Context, employees []EmployeeID, day CivilDate) (*RunReport, error) {
	return p.RecomputeWindow(ctx, employees, day, day)
}

// =============================================================================
// INPUT READING
// =============================================================================

func (p *Pipeline) readPlans(ctx context.Context, employees []EmployeeID, from, to CivilDate) (map[EmployeeID]map[CivilDate]PlannedShift, error) {
	plans, err := p.Plans.PlansInRange(ctx, employees, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[EmployeeID]map[CivilDate]PlannedShift)
	for _, pl := range plans {
		if out[pl.EmployeeID] == nil {
			out[pl.EmployeeID] = make(map[CivilDate]PlannedShift)
		}
		out[pl.EmployeeID][pl.Date] = pl
	}
	return out, nil
}

// readWindowPunches pages through the raw feed for the union of all
// identifier sets, grouping punches per employee. Unknown identifiers are
// reported, never silently dropped.
func (p *Pipeline) readWindowPunches(ctx context.Context, idsByEmployee map[EmployeeID][]IdentifierID, from, to CivilDate) (map[EmployeeID][]RawPunch, []string, error) {
	var allIDs []IdentifierID
	for _, ids := range idsByEmployee {
		allIDs = append(allIDs, ids...)
	}
	sort.Slice(allIDs, func(i, j int) bool { return allIDs[i] < allIDs[j] })

	// Padded read window: local midnight the day before, through local
	// midnight two days after the window's last day.
	fromT := p.Cal.DayStart(from.AddDays(-1))
	toT := p.Cal.DayStart(to.AddDays(2))

	resolver := &Resolver{Identities: p.Identities}
	byEmployee := make(map[EmployeeID][]RawPunch)
	var notes []string

	cursor := ""
	for {
		page, err := p.Punches.ReadPunches(ctx, allIDs, fromT, toT, cursor, p.pageSize())
		if err != nil {
			return nil, nil, err
		}
		grouped, unknown, err := resolver.GroupByEmployee(ctx, page.Punches)
		if err != nil {
			return nil, nil, err
		}
		for emp, punches := range grouped {
			byEmployee[emp] = append(byEmployee[emp], punches...)
		}
		for _, u := range unknown {
			e := &UnknownIdentifierError{IdentifierID: u.IdentifierID, At: u.At.Format(time.RFC3339)}
			notes = append(notes, e.Error())
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	// Pages arrive in timestamp order but multi-identifier merges can still
	// interleave; re-sort per employee for a deterministic stream.
	for emp := range byEmployee {
		SortPunches(byEmployee[emp])
	}
	return byEmployee, notes, nil
}

// =============================================================================
// PER-EMPLOYEE PROCESSING
// =============================================================================

type employeeResult struct {
	sessionsKept int
	flagsRaised  int
	collisions   []Collision
	notes        []string
}

func (p *Pipeline) processEmployee(ctx context.Context, emp EmployeeID, punches []RawPunch, plans map[CivilDate]PlannedShift, from, to CivilDate) (employeeResult, error) {
	var res employeeResult

	resolver := &SessionResolver{Cal: p.Cal, Jornada: p.Jornada}
	outcome := resolver.Pair(emp, punches)
	res.notes = append(res.notes, outcome.Notes...)

	// Keep only sessions attributed inside the unpadded window; the padding
	// exists to complete boundary-crossing shifts, not to widen the output.
	var inWindow []WorkSession
	for _, s := range outcome.Sessions {
		if s.WorkDate.AfterOrEqual(from) && s.WorkDate.BeforeOrEqual(to) {
			inWindow = append(inWindow, s)
		}
	}

	sessions, collisions := ConsolidateSessions(inWindow)
	res.collisions = collisions
	res.sessionsKept = len(sessions)
	p.Metrics.AddSessions(len(sessions))
	for range collisions {
		p.Metrics.CollisionResolved()
	}

	classifier := &GridClassifier{Cal: p.Cal}
	byDate := make(map[CivilDate]WorkSession, len(sessions))
	for _, s := range sessions {
		byDate[s.WorkDate] = s

		holiday, workable, err := p.Holidays.HolidayOn(ctx, s.WorkDate)
		if err != nil {
			return res, fmt.Errorf("holiday lookup %s: %w", s.WorkDate, err)
		}
		// A workable holiday keeps the date's ordinary weekday/Saturday rules.
		hours := classifier.Classify(s, p.Jornada, ClassifyDay(s.WorkDate, holiday && !workable))

		if err := p.Results.UpsertSession(ctx, s); err != nil {
			return res, fmt.Errorf("upsert session %s: %w", s.WorkDate, err)
		}
		if err := p.Results.UpsertHours(ctx, emp, s.WorkDate, hours); err != nil {
			return res, fmt.Errorf("upsert hours %s: %w", s.WorkDate, err)
		}
	}

	if err := p.writeCompliance(ctx, emp, plans, byDate, outcome, from, to, &res); err != nil {
		return res, err
	}

	// Flags from pairing, limited to the window.
	for _, f := range outcome.Flags {
		if f.Date.Before(from) || f.Date.After(to) {
			continue
		}
		if err := p.raiseFlag(ctx, f); err != nil {
			return res, err
		}
		res.flagsRaised++
	}
	return res, nil
}

// writeCompliance evaluates every date that has a plan or a session, and
// raises no-punches flags for planned working days with no data at all.
func (p *Pipeline) writeCompliance(ctx context.Context, emp EmployeeID, plans map[CivilDate]PlannedShift, byDate map[CivilDate]WorkSession, outcome PairingOutcome, from, to CivilDate, res *employeeResult) error {
	var eval ComplianceEvaluator
	today := p.Cal.WorkDate(p.now())

	for _, date := range DatesBetween(from, to) {
		var plan *PlannedShift
		if pl, ok := plans[date]; ok {
			plan = &pl
		}
		var session *WorkSession
		if s, ok := byDate[date]; ok {
			session = &s
		}
		if plan == nil && session == nil {
			continue
		}
		var orphanExit *time.Time
		if t, ok := outcome.OrphanExits[date]; ok && session == nil {
			orphanExit = &t
		}

		result := eval.Evaluate(emp, date, plan, session, orphanExit)
		if err := p.Results.UpsertCompliance(ctx, result); err != nil {
			return fmt.Errorf("upsert compliance %s: %w", date, err)
		}

		// A planned working day with zero punches is a data-quality fact
		// worth reviewing - unless the day has not happened yet. A day whose
		// punches all failed to pair is not a no-punches day; those raise
		// their own missing-entry/missing-exit flags.
		if plan != nil && plan.Status == ShiftWorking && session == nil &&
			!outcome.ObservedDates[date] && !date.After(today) {
			f := FlagEvent{
				EmployeeID: emp,
				Date:       date,
				Kind:       FlagNoPunches,
				Detail:     "planned working day with no punches",
			}
			if err := p.raiseFlag(ctx, f); err != nil {
				return err
			}
			res.flagsRaised++
		}
	}
	return nil
}

func (p *Pipeline) raiseFlag(ctx context.Context, f FlagEvent) error {
	flag := InconsistencyFlag{
		ID:         uuid.NewString(),
		EmployeeID: f.EmployeeID,
		Date:       f.Date,
		Kind:       f.Kind,
		Detail:     f.Detail,
		RaisedAt:   p.now(),
	}
	if err := p.Results.RaiseFlag(ctx, flag); err != nil {
		return fmt.Errorf("raise %s flag %s: %w", f.Kind, f.Date, err)
	}
	p.Metrics.FlagRaised(string(f.Kind))
	return nil
}

func (p *Pipeline) pageSize() int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return DefaultPageSize
}

func (p *Pipeline) parallelism() int {
	if p.Parallelism > 0 {
		return p.Parallelism
	}
	return DefaultParallelism
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

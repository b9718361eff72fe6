/*
scheduler.go - Nightly recomputation scheduler

PURPOSE:
  Periodically recomputes the previous civil day for the whole roster so
  that yesterday's punches are classified without anyone pressing a button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Recomputes a civil day at most once; completed days are remembered
    in memory, and recomputation is idempotent anyway
  - The manual /api/recompute endpoint remains the authoritative path
    for corrections and backfills

USAGE:
  scheduler := NewRecomputeScheduler(pipeline, roster, cal)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Recompute endpoint (manual recomputation)
  - jornada/pipeline.go: recomputation engine
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/angeant/sicamar-hours/jornada"
)

// RecomputeScheduler recomputes the previous civil day on a fixed interval.
type RecomputeScheduler struct {
	Pipeline      *jornada.Pipeline
	Roster        Roster
	Cal           jornada.Calendar
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastDay jornada.CivilDate
}

// NewRecomputeScheduler creates a new scheduler.
func NewRecomputeScheduler(pipeline *jornada.Pipeline, roster Roster, cal jornada.Calendar) *RecomputeScheduler {
	return &RecomputeScheduler{
		Pipeline:      pipeline,
		Roster:        roster,
		Cal:           cal,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RecomputeScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RecomputeScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RecomputeScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndProcess()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RecomputeScheduler) checkAndProcess() {
	ctx := context.Background()

	yesterday := rs.Cal.WorkDate(time.Now()).AddDays(-1)

	rs.mu.Lock()
	done := rs.lastDay.Equal(yesterday)
	rs.mu.Unlock()
	if done {
		return
	}

	log.Printf("[Scheduler] Recomputing %s for the whole roster", yesterday)

	employees, err := rs.Roster.ListEmployees(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing employees: %v", err)
		return
	}
	if len(employees) == 0 {
		log.Println("[Scheduler] No employees mapped, nothing to do")
		return
	}

	report, err := rs.Pipeline.RecomputeDay(ctx, employees, yesterday)
	if err != nil {
		log.Printf("[Scheduler] Recomputation of %s failed: %v", yesterday, err)
		return
	}

	rs.mu.Lock()
	rs.lastDay = yesterday
	rs.mu.Unlock()

	log.Printf("[Scheduler] Completed %s: %d employees, %d sessions, %d flags (run %s)",
		yesterday, report.Employees, report.SessionsKept, report.FlagsRaised, report.RunID)
	for _, e := range report.Errors {
		log.Printf("[Scheduler] Employee error: %s", e)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *RecomputeScheduler) RunNow() {
	rs.checkAndProcess()
}

package metrics_test

import (
	"testing"
	"time"

	"github.com/angeant/sicamar-hours/metrics"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	// The pipeline runs without instrumentation in tests; every recording
	// method must be safe on a nil receiver.
	var m *metrics.Metrics
	m.ObserveRun(time.Second)
	m.AddSessions(3)
	m.FlagRaised("missing-exit")
	m.CollisionResolved()
}

func TestNewRegistersAndRecords(t *testing.T) {
	// New registers on the default registry, so it runs once per process.
	m := metrics.New()
	m.ObserveRun(250 * time.Millisecond)
	m.AddSessions(2)
	m.FlagRaised("no-punches")
	m.CollisionResolved()
}

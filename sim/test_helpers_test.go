package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wastewise-india/sortline/sim/trace"
)

var traceOff = trace.TraceConfig{Level: trace.TraceLevelNone}

var testContaminant = Contaminant{Kind: "battery", Name: "Batteries", Severity: SeverityMedium}

// newTestSimulator builds a stopped simulator from the default config with
// optional overrides applied.
func newTestSimulator(t *testing.T, seed int64, mutate func(*LineConfig)) *Simulator {
	t.Helper()
	cfg := DefaultLineConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSimulator(cfg, seed, trace.TraceConfig{Level: trace.TraceLevelTransitions})
	require.NoError(t, err)
	return s
}

// stepUntil single-steps a stopped simulator until cond holds, failing the
// test after maxFrames.
func stepUntil(t *testing.T, s *Simulator, maxFrames int, cond func() bool) {
	t.Helper()
	for i := 0; i < maxFrames; i++ {
		if cond() {
			return
		}
		require.True(t, s.StepFrame(), "StepFrame refused; simulator is running")
	}
	if !cond() {
		t.Fatalf("condition not reached within %d frames (clock=%d)", maxFrames, s.Clock)
	}
}

func onLine(l *Line, it *Item) bool {
	for _, x := range l.Items() {
		if x == it {
			return true
		}
	}
	return false
}

func countEvents(s *Simulator, kind EventKind) int {
	n := 0
	for _, ev := range s.Events.Recent() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

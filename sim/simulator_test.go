package sim

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastewise-india/sortline/sim/trace"
)

// Scenario: a clean item rides the whole line and is recovered.
func TestSimulator_CleanItem_RecoveredAtExit(t *testing.T) {
	// GIVEN one clean item at the head of the line
	s := newTestSimulator(t, 1, nil)
	it := s.Inject(ItemSpec{Kind: KindPaper})
	maxFrames := int(s.Config.MaxItemLifetimeFrames())

	// WHEN the line is stepped until the item leaves
	stepUntil(t, s, maxFrames, func() bool { return s.Primary.Len() == 0 })

	// THEN it was recovered through the exit
	assert.Greater(t, it.Position.X, s.Config.Primary.Length)
	assert.Equal(t, 0, s.Inspection.Len())
	assert.Equal(t, 1, s.Stats.Recovered)
	assert.Equal(t, 1, s.Stats.TotalProcessed)
	assert.Equal(t, 100, s.Stats.RecoveryPercentage)
	assert.Equal(t, 0, s.Stats.Diverted)
}

// Scenario: a contaminated, cleanable item is diverted, cleaned, returned and recovered.
func TestSimulator_CleanableItem_DivertedCleanedAndRecovered(t *testing.T) {
	s := newTestSimulator(t, 1, nil)
	it := s.Inject(ItemSpec{Kind: KindGlass, Contaminant: &testContaminant, Cleanable: true})
	maxFrames := int(s.Config.MaxItemLifetimeFrames())
	primary, insp := s.Config.Primary, s.Config.Inspection

	// WHEN stepped until detection
	var xAtDetection float64
	stepUntil(t, s, maxFrames, func() bool {
		if it.State == StateMoving {
			xAtDetection = it.Position.X
		}
		return it.State == StateDiverting
	})

	// THEN detection happened inside the window and a divert event was emitted
	assert.Greater(t, xAtDetection, primary.DetectLo)
	assert.Less(t, xAtDetection, primary.DetectHi)
	assert.Equal(t, EventDivert, s.Events.Recent()[0].Kind)

	// WHEN stepped until the item reaches the inspection belt
	stepUntil(t, s, maxFrames, func() bool { return it.State == StateInspecting })

	// THEN it moved lines and scanning started
	assert.True(t, onLine(s.Inspection, it))
	assert.False(t, onLine(s.Primary, it))
	assert.Equal(t, insp.Y, it.Position.Y)
	assert.Equal(t, s.Clock, it.InspectionEnteredAt)
	assert.GreaterOrEqual(t, it.InspectionPosition, insp.MinX)
	assert.Less(t, it.InspectionPosition, insp.MaxX)
	assert.Equal(t, EventScanStart, s.Events.Recent()[0].Kind)
	enteredAt := it.InspectionEnteredAt

	// WHEN stepped until resolution
	stepUntil(t, s, maxFrames, func() bool { return it.State != StateInspecting })

	// THEN it is cleaned after the full scan duration
	require.Equal(t, StateReturning, it.State)
	elapsed := s.Clock - enteredAt
	assert.GreaterOrEqual(t, elapsed, insp.ScanDurationMs)
	assert.Less(t, elapsed, insp.ScanDurationMs+s.Config.Timing.FrameIntervalMs)
	assert.False(t, it.Contaminated)
	assert.Nil(t, it.Contaminant)
	assert.Equal(t, EventCleaned, s.Events.Recent()[0].Kind)
	assert.Equal(t, 1, s.Stats.Diverted)
	assert.Equal(t, 1, s.Stats.Cleaned)
	assert.Equal(t, 0, s.Stats.TotalProcessed)

	// WHEN stepped until it is back on the primary line
	stepUntil(t, s, maxFrames, func() bool { return it.State == StateMoving })

	// THEN it re-entered past the detection window
	assert.True(t, onLine(s.Primary, it))
	assert.False(t, onLine(s.Inspection, it))
	assert.Equal(t, primary.ReentryX, it.Position.X)
	assert.Equal(t, primary.Y, it.Position.Y)

	// WHEN stepped until it leaves
	stepUntil(t, s, maxFrames, func() bool { return s.Primary.Len() == 0 })

	// THEN it was recovered exactly once and never re-detected
	assert.Equal(t, 1, s.Stats.Recovered)
	assert.Equal(t, 1, s.Stats.TotalProcessed)
	assert.Equal(t, 100, s.Stats.RecoveryPercentage)
	summary := trace.Summarize(s.Trace)
	assert.Equal(t, 1, summary.ByTarget[string(StateDiverting)])
	assert.Equal(t, 1, summary.ByTarget[trace.OutcomeRecovered])
}

// Scenario: a contaminated, uncleanable item is scrapped.
func TestSimulator_UncleanableItem_Scrapped(t *testing.T) {
	s := newTestSimulator(t, 1, nil)
	it := s.Inject(ItemSpec{Kind: KindMetal, Contaminant: &testContaminant, Cleanable: false})
	maxFrames := int(s.Config.MaxItemLifetimeFrames())
	sink := s.Config.Scrap

	// WHEN stepped until the scan resolves
	stepUntil(t, s, maxFrames, func() bool {
		return it.State != StateMoving && it.State != StateDiverting && it.State != StateInspecting
	})

	// THEN it is headed for the scrap sink, counted as scrapped but not yet processed
	require.Equal(t, StateScrapping, it.State)
	assert.True(t, it.Contaminated)
	assert.NotNil(t, it.Contaminant)
	assert.Equal(t, EventScrapped, s.Events.Recent()[0].Kind)
	assert.Equal(t, 1, s.Stats.Scrapped)
	assert.Equal(t, 1, s.Stats.Diverted)
	assert.Equal(t, 0, s.Stats.TotalProcessed)

	// WHEN stepped until it reaches the sink
	stepUntil(t, s, maxFrames, func() bool { return s.Inspection.Len() == 0 })

	// THEN it was removed within epsilon of the sink
	dist := math.Hypot(sink.SinkX-it.Position.X, sink.SinkY-it.Position.Y)
	assert.LessOrEqual(t, dist, sink.Epsilon)
	assert.Equal(t, 0, s.Primary.Len())
	assert.Equal(t, 1, s.Stats.Scrapped)
	assert.Equal(t, 0, s.Stats.Recovered)
	assert.Equal(t, 1, s.Stats.TotalProcessed)
	assert.Equal(t, 0, s.Stats.RecoveryPercentage)
}

// Scenario: reset mid-run clears everything.
func TestSimulator_ResetMidRun_ClearsState(t *testing.T) {
	// GIVEN a running line with 5 items in flight
	s := newTestSimulator(t, 3, nil)
	s.Start()
	s.Advance(5 * s.Config.Timing.SpawnIntervalMs)
	require.Equal(t, 5, s.Snapshot().InFlight())
	oldSession := s.SessionID

	// WHEN reset
	s.Reset()

	// THEN both lines, stats and events are back to their initial state
	snap := s.Snapshot()
	assert.Empty(t, snap.PrimaryItems)
	assert.Empty(t, snap.InspectionItems)
	assert.Equal(t, NewStats(), snap.Stats)
	assert.Equal(t, 100, snap.Stats.RecoveryPercentage)
	assert.Empty(t, snap.Events)
	assert.False(t, snap.Running)
	assert.Equal(t, int64(0), snap.Clock)
	assert.NotEqual(t, oldSession, s.SessionID)
	assert.Empty(t, s.Trace.Transitions)

	// AND the halted drivers stay halted
	assert.Equal(t, 0, s.Advance(60_000))
	assert.Equal(t, 0, s.Snapshot().InFlight())
}

func TestSimulator_StopPreservesItems(t *testing.T) {
	// GIVEN a line that has run for two seconds
	s := newTestSimulator(t, 5, nil)
	s.Start()
	s.Advance(2000)
	before := s.Snapshot()

	// WHEN stopped and wall time keeps passing
	require.True(t, s.Stop())
	s.Advance(10_000)

	// THEN nothing moved and the pause was logged
	after := s.Snapshot()
	if diff := cmp.Diff(before.PrimaryItems, after.PrimaryItems); diff != "" {
		t.Errorf("items changed while stopped (-before +after):\n%s", diff)
	}
	assert.Equal(t, before.Clock, after.Clock)
	assert.False(t, after.Running)
	assert.Equal(t, EventStopped, after.Events[0].Kind)
	assert.False(t, s.Stop(), "second Stop must be a no-op")

	// WHEN restarted
	require.True(t, s.Start())
	s.Advance(before.Clock + 1000)

	// THEN the line resumes from where it paused
	assert.Greater(t, s.Snapshot().InFlight(), before.InFlight())
	assert.Equal(t, EventStarted, s.Events.Recent()[0].Kind)
}

func TestSimulator_StartTwice_NoDuplicateDrivers(t *testing.T) {
	s := newTestSimulator(t, 5, nil)

	require.True(t, s.Start())
	require.False(t, s.Start())
	s.Advance(s.Config.Timing.SpawnIntervalMs)

	// one spawn driver means exactly one item at the first spawn time
	assert.Equal(t, 1, s.Primary.Len())
	assert.Equal(t, 1, countEvents(s, EventStarted))
}

func TestSimulator_StepFrame_RefusedWhileRunning(t *testing.T) {
	s := newTestSimulator(t, 5, nil)
	s.Start()

	assert.False(t, s.StepFrame())
	assert.Equal(t, int64(0), s.Clock)
}

func TestSimulator_HandoffJoinsDestinationNextTick(t *testing.T) {
	// GIVEN a zero-length scan, so the inspection line would resolve an item
	// on its very first update
	s := newTestSimulator(t, 1, func(c *LineConfig) { c.Inspection.ScanDurationMs = 0 })
	it := s.Inject(ItemSpec{Kind: KindTextiles, Contaminant: &testContaminant, Cleanable: true})

	// WHEN the item is handed to the inspection line
	stepUntil(t, s, int(s.Config.MaxItemLifetimeFrames()), func() bool { return it.State == StateInspecting })

	// THEN it was not processed by the inspection line in the same tick
	assert.Equal(t, StateInspecting, it.State)

	// AND it resolves on the next tick
	s.StepFrame()
	assert.Equal(t, StateReturning, it.State)
}

func TestSimulator_ContaminatedItemSkippingDetection_CountedAsEscaped(t *testing.T) {
	// GIVEN a contaminated item placed past the detection window
	s := newTestSimulator(t, 1, nil)
	it := s.Inject(ItemSpec{Kind: KindCardboard, Contaminant: &testContaminant})
	it.Position.X = s.Config.Primary.DetectHi

	// WHEN it rides to the exit
	stepUntil(t, s, int(s.Config.MaxItemLifetimeFrames()), func() bool { return s.Primary.Len() == 0 })

	// THEN it is not booked as processed or recovered
	assert.Equal(t, 1, s.Stats.Escaped)
	assert.Equal(t, 0, s.Stats.TotalProcessed)
	assert.Equal(t, 0, s.Stats.Recovered)
	assert.Equal(t, 100, s.Stats.RecoveryPercentage)
}

func TestSimulator_ScrapStepNeverOvershoots(t *testing.T) {
	// GIVEN a scrap speed far larger than epsilon
	s := newTestSimulator(t, 1, func(c *LineConfig) {
		c.Scrap.Speed = 400
		c.Scrap.Epsilon = 1
	})
	it := s.Inject(ItemSpec{Kind: KindMetal, Contaminant: &testContaminant})

	// WHEN it is scrapped
	stepUntil(t, s, int(s.Config.MaxItemLifetimeFrames()), func() bool { return s.Inspection.Len() == 0 && s.Primary.Len() == 0 })

	// THEN it landed on the sink instead of oscillating around it
	assert.InDelta(t, s.Config.Scrap.SinkX, it.Position.X, 1e-9)
	assert.InDelta(t, s.Config.Scrap.SinkY, it.Position.Y, 1e-9)
	assert.Equal(t, 1, s.Stats.TotalProcessed)
}

// TestSimulator_Invariants runs a heavily contaminated line frame by frame and
// checks every item and aggregate after each frame.
func TestSimulator_Invariants(t *testing.T) {
	s := newTestSimulator(t, 11, func(c *LineConfig) {
		c.Spawn.ContaminationProbability = 0.5
		c.Spawn.CleanableProbability = 0.5
	})
	frame := s.Config.Timing.FrameIntervalMs
	bound := s.Config.MaxItemLifetimeFrames()
	sink := s.Config.Scrap

	type seen struct {
		state ItemState
		pos   Position
	}
	prev := make(map[uint64]seen)

	s.Start()
	for i := 0; i < 6000; i++ {
		s.Advance(s.Clock + frame)
		snap := s.Snapshot()

		// recovery rate bounds
		require.GreaterOrEqual(t, snap.Stats.RecoveryPercentage, 0)
		require.LessOrEqual(t, snap.Stats.RecoveryPercentage, 100)
		if snap.Stats.TotalProcessed == 0 {
			require.Equal(t, 100, snap.Stats.RecoveryPercentage)
		}

		inTransitToSink := 0
		next := make(map[uint64]seen)
		check := func(it Item, primary bool) {
			// each line only holds its own states
			require.Equal(t, primary, it.State.OnPrimaryLine(), "item %d state %s on wrong line", it.ID, it.State)
			// contaminant iff contaminated
			require.Equal(t, it.Contaminated, it.Contaminant != nil, "item %d", it.ID)
			// termination bound
			require.LessOrEqual(t, (snap.Clock-it.SpawnedAt)/frame, bound, "item %d outlived the bound", it.ID)

			if p, ok := prev[it.ID]; ok && p.state == it.State {
				switch it.State {
				case StateMoving:
					require.Greater(t, it.Position.X, p.pos.X)
				case StateDiverting:
					require.Greater(t, it.Position.Y, p.pos.Y)
				case StateReturning:
					require.Less(t, it.Position.Y, p.pos.Y)
				case StateScrapping:
					before := math.Hypot(sink.SinkX-p.pos.X, sink.SinkY-p.pos.Y)
					after := math.Hypot(sink.SinkX-it.Position.X, sink.SinkY-it.Position.Y)
					require.Less(t, after, before)
				}
			}
			if it.State == StateScrapping {
				inTransitToSink++
			}
			next[it.ID] = seen{state: it.State, pos: it.Position}
		}
		for _, it := range snap.PrimaryItems {
			check(it, true)
		}
		for _, it := range snap.InspectionItems {
			check(it, false)
		}
		prev = next

		// conservation: scrapped is booked at resolution, processed at the sink
		require.Equal(t, snap.Stats.Recovered+snap.Stats.Scrapped, snap.Stats.TotalProcessed+inTransitToSink)
	}

	// no item was ever detected twice
	diverts := make(map[uint64]int)
	for _, r := range s.Trace.Transitions {
		if r.To == string(StateDiverting) {
			diverts[r.ItemID]++
		}
	}
	for id, n := range diverts {
		assert.Equal(t, 1, n, "item %d diverted %d times", id, n)
	}
	assert.NotEmpty(t, diverts)
	assert.Greater(t, s.Stats.Cleaned, 0)
	assert.Greater(t, s.Stats.Scrapped, 0)
	assert.Greater(t, s.Stats.Recovered, 0)
}

func TestSimulator_SameSeed_IdenticalSnapshots(t *testing.T) {
	a := newTestSimulator(t, 99, nil)
	b := newTestSimulator(t, 99, nil)

	a.Run(45_000)
	b.Run(45_000)

	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Errorf("snapshots diverged (-a +b):\n%s", diff)
	}
}

func TestSimulator_Run_FrameAndSpawnCadence(t *testing.T) {
	s := newTestSimulator(t, 4, nil)

	s.Run(4000)

	// frames at 16, 32, ... 4000 and spawns at 400, 800, ... 4000
	assert.Equal(t, int64(4000/16), s.FrameCount)
	assert.Equal(t, 10, s.Snapshot().InFlight())
	assert.Equal(t, int64(4000), s.Clock)
}

func TestSimulator_Snapshot_SharesNoMemory(t *testing.T) {
	s := newTestSimulator(t, 1, nil)
	s.Inject(ItemSpec{Kind: KindPaper, Contaminant: &testContaminant, Cleanable: true})

	snap := s.Snapshot()
	snap.PrimaryItems[0].Position.X = 999
	snap.PrimaryItems[0].Contaminant.Name = "changed"

	it := s.Primary.Items()[0]
	assert.Equal(t, 0.0, it.Position.X)
	assert.Equal(t, testContaminant.Name, it.Contaminant.Name)
}

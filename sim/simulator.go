// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wastewise-india/sortline/sim/trace"
)

// Simulator is the core object that holds simulation time, both belts,
// the session stats and the event loop. It is not safe for concurrent use;
// live.Controller provides the single-owner boundary for real-time use.
type Simulator struct {
	Clock  int64 // sim ms
	Config LineConfig
	// Primary holds moving and diverting items.
	Primary *Line
	// Inspection holds inspecting, returning and scrapping items.
	Inspection *Line
	Stats      Stats
	Events     *EventLog
	// Trace is nil unless transition tracing is enabled.
	Trace      *trace.SimulationTrace
	SessionID  uuid.UUID
	Seed       int64
	FrameCount int64

	// queue doubles as the timer handle of the two periodic drivers:
	// it is non-empty exactly while the line is running.
	queue   EventQueue
	running bool

	rng        *PartitionedRNG
	nextItemID uint64

	// handoffs take effect after both lines have been ticked
	toInspection []*Item
	toPrimary    []*Item
}

// NewSimulator validates cfg and returns a stopped simulator at clock 0.
func NewSimulator(cfg LineConfig, seed int64, traceCfg trace.TraceConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(string(traceCfg.Level)) {
		return nil, fmt.Errorf("unknown trace level %q", traceCfg.Level)
	}
	s := &Simulator{
		Config:     cfg,
		Primary:    &Line{},
		Inspection: &Line{},
		Stats:      NewStats(),
		Events:     NewEventLog(cfg.EventLogCapacity),
		Seed:       seed,
		rng:        NewPartitionedRNG(NewSimulationKey(seed)),
	}
	if traceCfg.Enabled() {
		s.Trace = trace.NewSimulationTrace(traceCfg)
	}
	s.SessionID = s.newSessionID()
	return s, nil
}

// Running reports whether the frame and spawn drivers are scheduled.
func (sim *Simulator) Running() bool {
	return sim.running
}

// Schedule pushes an event into the simulator's event queue.
func (sim *Simulator) Schedule(ev SimEvent) {
	sim.queue.Schedule(ev)
}

// Start schedules the frame and spawn drivers. Returns false if already running.
func (sim *Simulator) Start() bool {
	if sim.running {
		return false
	}
	sim.running = true
	sim.Schedule(&FrameEvent{time: sim.Clock + sim.Config.Timing.FrameIntervalMs})
	sim.Schedule(&SpawnEvent{time: sim.Clock + sim.Config.Timing.SpawnIntervalMs})
	sim.record(EventStarted, sim.Clock, "Dual-belt system started")
	logrus.Infof("[tick %07d] Line started (session %s)", sim.Clock, sim.SessionID)
	return true
}

// Stop cancels both drivers. Items keep their state and position.
// Returns false if the line was not running.
func (sim *Simulator) Stop() bool {
	if !sim.running {
		return false
	}
	sim.running = false
	sim.queue.Clear()
	sim.record(EventStopped, sim.Clock, "System paused")
	logrus.Infof("[tick %07d] Line paused", sim.Clock)
	return true
}

// Reset halts the line and returns it to its initial state under a new session.
// The event feed is left empty.
func (sim *Simulator) Reset() {
	logrus.Infof("[tick %07d] Line reset (session %s ended)", sim.Clock, sim.SessionID)
	logrus.Debugf("[tick %07d] Discarding primary %s, inspection %s", sim.Clock, sim.Primary, sim.Inspection)
	sim.running = false
	sim.queue.Clear()
	sim.Clock = 0
	sim.FrameCount = 0
	sim.nextItemID = 0
	sim.Primary.clear()
	sim.Inspection.clear()
	sim.toInspection = nil
	sim.toPrimary = nil
	sim.Stats = NewStats()
	sim.Events.Clear()
	if sim.Trace != nil {
		sim.Trace.Reset()
	}
	sim.SessionID = sim.newSessionID()
}

// Advance executes every pending event due at or before until, then moves the
// clock to until. While stopped it does nothing, so paused time never counts
// toward inspection dwell. Returns the number of events executed.
func (sim *Simulator) Advance(until int64) int {
	if !sim.running {
		return 0
	}
	n := 0
	for ev := sim.queue.Peek(); ev != nil && ev.Timestamp() <= until; ev = sim.queue.Peek() {
		sim.queue.PopNext()
		sim.Clock = ev.Timestamp()
		logrus.Tracef("[tick %07d] Executing %T", sim.Clock, ev)
		ev.Execute(sim)
		n++
	}
	if until > sim.Clock {
		sim.Clock = until
	}
	return n
}

// Run starts the line if needed and simulates up to horizon (sim ms).
func (sim *Simulator) Run(horizon int64) {
	sim.Start()
	sim.Advance(horizon)
	logrus.Infof("[tick %07d] Simulation ended after %d frames", sim.Clock, sim.FrameCount)
}

// StepFrame runs exactly one frame while the line is stopped, without spawning.
// Returns false and does nothing while running.
func (sim *Simulator) StepFrame() bool {
	if sim.running {
		return false
	}
	sim.Tick(sim.Clock + sim.Config.Timing.FrameIntervalMs)
	return true
}

// Tick advances both lines by one frame at time now.
// The primary line is updated before the inspection line; items handed off
// in either direction join their destination only after both updates.
func (sim *Simulator) Tick(now int64) {
	if now > sim.Clock {
		sim.Clock = now
	}
	sim.FrameCount++

	sim.tickPrimary(now)
	sim.tickInspection(now)

	for _, it := range sim.toInspection {
		sim.Inspection.Enqueue(it)
	}
	for _, it := range sim.toPrimary {
		sim.Primary.Enqueue(it)
	}
	clear(sim.toInspection)
	clear(sim.toPrimary)
	sim.toInspection = sim.toInspection[:0]
	sim.toPrimary = sim.toPrimary[:0]
}

// transition moves it to state to and records the change.
func (sim *Simulator) transition(it *Item, to ItemState, now int64) {
	from := it.State
	it.State = to
	logrus.Debugf("[tick %07d] item %d (%s): %s -> %s", now, it.ID, it.Kind, from, to)
	if sim.Trace != nil {
		sim.Trace.RecordTransition(trace.TransitionRecord{
			ItemID: it.ID, Kind: string(it.Kind), Clock: now, From: string(from), To: string(to),
		})
	}
}

// traceOutcome records an item leaving both lines.
func (sim *Simulator) traceOutcome(it *Item, outcome string, now int64) {
	logrus.Debugf("[tick %07d] item %d (%s): %s -> %s", now, it.ID, it.Kind, it.State, outcome)
	if sim.Trace != nil {
		sim.Trace.RecordTransition(trace.TransitionRecord{
			ItemID: it.ID, Kind: string(it.Kind), Clock: now, From: string(it.State), To: outcome,
		})
	}
}

func (sim *Simulator) record(kind EventKind, now int64, message string) {
	sim.Events.Record(Event{Kind: kind, Message: message, Clock: now})
}

func (sim *Simulator) newSessionID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(sim.rng.ForSubsystem(SubsystemSession))
	if err != nil {
		// math/rand readers never fail
		panic(fmt.Sprintf("session id: %v", err))
	}
	return id
}

package sim

import "github.com/sirupsen/logrus"

// SimEvent defines the interface for all scheduled simulation events.
// Each event has a Timestamp (in sim ms), a Priority used to order events that
// share a timestamp, and an Execute method that advances simulation state.
type SimEvent interface {
	Timestamp() int64
	Priority() int
	Execute(*Simulator)
}

// Event type priorities. Lower runs first at equal timestamps, so a freshly
// spawned item is first moved by the following frame.
const (
	priorityFrame = iota
	prioritySpawn
)

// FrameEvent runs one tick of both lines and schedules the next frame.
type FrameEvent struct {
	time int64 // Simulation time of the frame (in ms)
}

// Timestamp returns the scheduled time of the FrameEvent.
func (e *FrameEvent) Timestamp() int64 {
	return e.time
}

// Priority returns the tie-break priority of the FrameEvent.
func (e *FrameEvent) Priority() int {
	return priorityFrame
}

// Execute ticks the line and keeps the frame driver alive.
func (e *FrameEvent) Execute(sim *Simulator) {
	sim.Tick(e.time)
	sim.Schedule(&FrameEvent{time: e.time + sim.Config.Timing.FrameIntervalMs})
}

// SpawnEvent places one new item at the head of the primary line and
// schedules the next spawn.
type SpawnEvent struct {
	time int64 // Simulation time of the spawn (in ms)
}

// Timestamp returns the scheduled time of the SpawnEvent.
func (e *SpawnEvent) Timestamp() int64 {
	return e.time
}

// Priority returns the tie-break priority of the SpawnEvent.
func (e *SpawnEvent) Priority() int {
	return prioritySpawn
}

// Execute spawns and reschedules.
func (e *SpawnEvent) Execute(sim *Simulator) {
	it := sim.spawn(e.time)
	logrus.Debugf("<< Spawn: item %d (%s) at %d ms", it.ID, it.Kind, e.time)
	sim.Schedule(&SpawnEvent{time: e.time + sim.Config.Timing.SpawnIntervalMs})
}

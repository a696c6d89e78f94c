// Package sim provides the discrete-event engine of the dual-belt sorting line.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - item.go: Item lifecycle (moving → diverting → inspecting → returning | scrapping)
//   - event.go: the two periodic drivers (FrameEvent, SpawnEvent)
//   - simulator.go: the event loop, Start/Stop/Reset and the per-frame Tick
//
// The per-line rules live in primary_line.go (detection, exit, divert) and
// inspection_line.go (scan, return, scrap). spawner.go draws new items from
// the catalogs in catalog.go. stats.go and eventlog.go hold the session
// aggregates that Snapshot publishes.
//
// # Time
//
// Simulation time is an int64 millisecond clock. Advance executes every event
// due up to a target time; it never runs while the line is stopped, so paused
// wall time does not count toward inspection dwell. Randomness comes from a
// PartitionedRNG so the same seed replays the same session.
//
// # Sub-packages
//   - sim/trace/: item transition recording and summary
//   - sim/live/: wall-clock driver with a single-owner command loop
package sim

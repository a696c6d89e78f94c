package sim

// Snapshot is an immutable copy of the simulator's observable state, published
// once per advance for rendering layers. It shares no memory with the simulator.
type Snapshot struct {
	SessionID       string  `json:"session_id" msgpack:"session_id"`
	Clock           int64   `json:"clock" msgpack:"clock"`
	Running         bool    `json:"running" msgpack:"running"`
	PrimaryItems    []Item  `json:"primary_items" msgpack:"primary_items"`
	InspectionItems []Item  `json:"inspection_items" msgpack:"inspection_items"`
	Stats           Stats   `json:"stats" msgpack:"stats"`
	Events          []Event `json:"events" msgpack:"events"` // newest first
}

// Snapshot copies the current state.
func (sim *Simulator) Snapshot() Snapshot {
	return Snapshot{
		SessionID:       sim.SessionID.String(),
		Clock:           sim.Clock,
		Running:         sim.running,
		PrimaryItems:    sim.Primary.snapshot(),
		InspectionItems: sim.Inspection.snapshot(),
		Stats:           sim.Stats,
		Events:          sim.Events.Recent(),
	}
}

// InFlight returns the number of items on either line.
func (s Snapshot) InFlight() int {
	return len(s.PrimaryItems) + len(s.InspectionItems)
}

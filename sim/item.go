// Defines the Item struct that models a single piece of waste on the sorting line.
// Tracks position, lifecycle state, contamination and inspection timing.

package sim

import (
	"fmt"
)

// ItemState represents the lifecycle state of an item.
// moving and diverting items live on the primary line; inspecting, returning
// and scrapping items live on the inspection line.
type ItemState string

const (
	StateMoving     ItemState = "moving"
	StateDiverting  ItemState = "diverting"
	StateInspecting ItemState = "inspecting"
	StateReturning  ItemState = "returning"
	StateScrapping  ItemState = "scrapping"
)

// OnPrimaryLine reports whether an item in this state belongs to the primary line.
func (s ItemState) OnPrimaryLine() bool {
	return s == StateMoving || s == StateDiverting
}

// Position is a continuous 2D coordinate in line units.
type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Item models a single item's lifecycle in the simulation.
type Item struct {
	ID   uint64 `json:"id" msgpack:"id"`     // Unique within a session, assigned at spawn
	Kind Kind   `json:"kind" msgpack:"kind"` // Waste category from the catalog

	Position Position  `json:"position" msgpack:"position"`
	State    ItemState `json:"state" msgpack:"state"`

	Contaminated bool         `json:"contaminated" msgpack:"contaminated"`
	Contaminant  *Contaminant `json:"contaminant,omitempty" msgpack:"contaminant,omitempty"` // non-nil iff Contaminated
	Cleanable    bool         `json:"cleanable" msgpack:"cleanable"`                         // fixed at spawn, read only at resolution

	SpawnedAt           int64   `json:"spawned_at" msgpack:"spawned_at"`                       // sim ms
	InspectionEnteredAt int64   `json:"inspection_entered_at" msgpack:"inspection_entered_at"` // sim ms, set on entering inspecting
	InspectionPosition  float64 `json:"inspection_position" msgpack:"inspection_position"`     // X on the inspection belt while inspecting
	ScanProgress        float64 `json:"scan_progress" msgpack:"scan_progress"`                 // [0,1) rendering hint, no control flow
}

// Name returns the display name of the item's kind.
func (it *Item) Name() string {
	return it.Kind.DisplayName()
}

// clone returns a copy that shares no pointers with it.
func (it *Item) clone() Item {
	c := *it
	if it.Contaminant != nil {
		cc := *it.Contaminant
		c.Contaminant = &cc
	}
	return c
}

// This method returns a human-readable string representation of an Item.
func (it Item) String() string {
	return fmt.Sprintf("Item: (ID: %d, Kind: %s, State: %s, Pos: (%.1f, %.1f), Contaminated: %v)",
		it.ID, it.Kind, it.State, it.Position.X, it.Position.Y, it.Contaminated)
}

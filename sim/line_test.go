package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLine_EnqueuePreservesOrder(t *testing.T) {
	l := &Line{}
	a, b, c := &Item{ID: 1}, &Item{ID: 2}, &Item{ID: 3}

	l.Enqueue(a)
	l.Enqueue(b)
	l.Enqueue(c)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []*Item{a, b, c}, l.Items())
}

func TestLine_EnqueueNil_Panics(t *testing.T) {
	l := &Line{}
	assert.Panics(t, func() { l.Enqueue(nil) })
}

func TestLine_Retain_VisitsEachOnceInOrder(t *testing.T) {
	l := &Line{}
	for i := uint64(1); i <= 5; i++ {
		l.Enqueue(&Item{ID: i})
	}

	var visited []uint64
	l.retain(func(it *Item) bool {
		visited = append(visited, it.ID)
		return it.ID%2 == 1
	})

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, visited)
	var kept []uint64
	for _, it := range l.Items() {
		kept = append(kept, it.ID)
	}
	assert.Equal(t, []uint64{1, 3, 5}, kept)
}

func TestLine_Snapshot_IsDeepCopy(t *testing.T) {
	l := &Line{}
	c := testContaminant
	l.Enqueue(&Item{ID: 1, Contaminated: true, Contaminant: &c})

	snap := l.snapshot()
	snap[0].Contaminant.Name = "changed"
	snap[0].ID = 9

	assert.Equal(t, uint64(1), l.Items()[0].ID)
	assert.Equal(t, testContaminant.Name, l.Items()[0].Contaminant.Name)
}

func TestLine_Clear(t *testing.T) {
	l := &Line{}
	l.Enqueue(&Item{ID: 1})
	l.clear()
	assert.Equal(t, 0, l.Len())
}

func TestLine_String_ListsItemsInOrder(t *testing.T) {
	// GIVEN a line with two items
	l := &Line{}
	l.Enqueue(&Item{ID: 1, Kind: KindPaper, State: StateMoving, Position: Position{X: 10, Y: 150}})
	l.Enqueue(&Item{ID: 2, Kind: KindGlass, State: StateDiverting, Position: Position{X: 612.5, Y: 170}, Contaminated: true})

	// THEN both are rendered in arrival order inside brackets
	assert.Equal(t,
		"[Item: (ID: 1, Kind: paper, State: moving, Pos: (10.0, 150.0), Contaminated: false) "+
			"Item: (ID: 2, Kind: glass, State: diverting, Pos: (612.5, 170.0), Contaminated: true)]",
		l.String())
	assert.Equal(t, "[]", (&Line{}).String())
}

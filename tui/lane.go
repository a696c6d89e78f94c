package tui

import (
	"math"
	"strings"

	"github.com/wastewise-india/sortline/sim"
)

// cell is one rendered column of a lane.
type cell struct {
	glyph rune
	item  *sim.Item
}

// column maps an X coordinate in [0, length] onto [0, width).
func column(x, length float64, width int) int {
	col := int(math.Floor(x / length * float64(width)))
	return min(max(col, 0), width-1)
}

// layoutLane places items on a lane of the given width. Later items win a
// shared column. Inspecting items are drawn at their inspection position.
func layoutLane(items []sim.Item, length float64, width int) []cell {
	cells := make([]cell, width)
	for i := range cells {
		cells[i].glyph = '·'
	}
	for i := range items {
		it := &items[i]
		x := it.Position.X
		if it.State == sim.StateInspecting {
			x = it.InspectionPosition
		}
		cells[column(x, length, width)] = cell{glyph: glyphFor(it), item: it}
	}
	return cells
}

func glyphFor(it *sim.Item) rune {
	switch it.State {
	case sim.StateDiverting:
		return 'v'
	case sim.StateInspecting:
		return '?'
	case sim.StateReturning:
		return '^'
	case sim.StateScrapping:
		return 'x'
	}
	if it.Contaminated {
		return '*'
	}
	return 'o'
}

func styleFor(it *sim.Item) func(...string) string {
	switch {
	case it.State == sim.StateInspecting:
		return inspectingStyle.Render
	case it.State == sim.StateScrapping:
		return scrappingStyle.Render
	case it.Contaminated:
		return contaminatedStyle.Render
	default:
		return cleanStyle.Render
	}
}

// renderLane draws a lane. marks are X coordinates drawn as '|' where no item sits.
func renderLane(items []sim.Item, length float64, width int, marks ...float64) string {
	cells := layoutLane(items, length, width)
	for _, x := range marks {
		c := &cells[column(x, length, width)]
		if c.item == nil {
			c.glyph = '|'
		}
	}

	var sb strings.Builder
	for _, c := range cells {
		switch {
		case c.item != nil:
			sb.WriteString(styleFor(c.item)(string(c.glyph)))
		case c.glyph == '|':
			sb.WriteString(windowStyle.Render("|"))
		default:
			sb.WriteString(laneStyle.Render(string(c.glyph)))
		}
	}
	return sb.String()
}

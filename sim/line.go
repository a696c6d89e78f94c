// Implements Line, the ordered collection of items currently owned by one belt.

package sim

import (
	"fmt"
	"strings"
)

// Line holds the items on one belt in arrival order.
// Only the owning Simulator mutates it.
type Line struct {
	items []*Item
}

// Enqueue adds an item to the back of the line.
func (l *Line) Enqueue(it *Item) {
	if it == nil {
		panic("Enqueue: item must not be nil")
	}
	l.items = append(l.items, it)
}

// Len returns the number of items on the line.
func (l *Line) Len() int {
	return len(l.items)
}

// Items returns the line contents for iteration.
// The returned slice is the line's internal storage -- callers within the
// sim package may iterate over it but MUST NOT append to or reslice it.
func (l *Line) Items() []*Item {
	return l.items
}

// retain keeps only the items for which keep returns true, preserving order.
// keep is called exactly once per item, in order.
func (l *Line) retain(keep func(*Item) bool) {
	kept := l.items[:0]
	for _, it := range l.items {
		if keep(it) {
			kept = append(kept, it)
		}
	}
	clear(l.items[len(kept):])
	l.items = kept
}

func (l *Line) clear() {
	clear(l.items)
	l.items = l.items[:0]
}

func (l *Line) snapshot() []Item {
	out := make([]Item, len(l.items))
	for i, it := range l.items {
		out[i] = it.clone()
	}
	return out
}

func (l *Line) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range l.items {
		sb.WriteString(fmt.Sprint(*val))
		if i < len(l.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

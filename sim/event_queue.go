package sim

import "container/heap"

type queuedEvent struct {
	ev  SimEvent
	seq uint64
}

// EventQueue implements heap.Interface with deterministic ordering.
// Order by: timestamp → type priority → insertion sequence.
type EventQueue struct {
	events  []queuedEvent
	nextSeq uint64
}

// Len implements heap.Interface
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Less implements heap.Interface
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.ev.Timestamp() != ej.ev.Timestamp() {
		return ei.ev.Timestamp() < ej.ev.Timestamp()
	}
	if ei.ev.Priority() != ej.ev.Priority() {
		return ei.ev.Priority() < ej.ev.Priority()
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

// Push implements heap.Interface
func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(queuedEvent))
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue.
func (q *EventQueue) Schedule(ev SimEvent) {
	heap.Push(q, queuedEvent{ev: ev, seq: q.nextSeq})
	q.nextSeq++
}

// PopNext removes and returns the next event, or nil when empty.
func (q *EventQueue) PopNext() SimEvent {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(queuedEvent).ev
}

// Peek returns the next event without removing it, or nil when empty.
func (q *EventQueue) Peek() SimEvent {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0].ev
}

// Clear drops every pending event.
func (q *EventQueue) Clear() {
	q.events = nil
}

package sim

import "fmt"

// EventKind classifies a notable transition shown in the event feed.
type EventKind string

const (
	EventContaminatedSpawn EventKind = "contaminated-spawn"
	EventDivert            EventKind = "divert"
	EventScanStart         EventKind = "scan-start"
	EventCleaned           EventKind = "cleaned"
	EventScrapped          EventKind = "scrapped"
	EventStarted           EventKind = "started"
	EventStopped           EventKind = "stopped"
)

// Event is one entry of the recent-event feed.
type Event struct {
	Kind    EventKind `json:"kind" msgpack:"kind"`
	Message string    `json:"message" msgpack:"message"`
	Clock   int64     `json:"clock" msgpack:"clock"` // sim ms
}

// EventLog is a fixed-capacity ring of the most recent events.
// Not thread-safe; owned by the Simulator.
type EventLog struct {
	buf  []Event
	head int // index of the next write
	size int
}

// NewEventLog creates an empty log retaining at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		panic(fmt.Sprintf("NewEventLog: capacity must be >= 1, got %d", capacity))
	}
	return &EventLog{buf: make([]Event, capacity)}
}

// Record appends an event, evicting the oldest when full. No deduplication.
func (l *EventLog) Record(ev Event) {
	l.buf[l.head] = ev
	l.head = (l.head + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	return l.size
}

// Cap returns the retention capacity.
func (l *EventLog) Cap() int {
	return len(l.buf)
}

// Recent returns a copy of the retained events, newest first.
func (l *EventLog) Recent() []Event {
	out := make([]Event, 0, l.size)
	for i := 1; i <= l.size; i++ {
		idx := (l.head - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Clear drops every retained event.
func (l *EventLog) Clear() {
	clear(l.buf)
	l.head = 0
	l.size = 0
}

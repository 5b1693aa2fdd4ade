// internal/game/event_log.go
package game

// EventLogCapacity is the number of notices kept per room.
const EventLogCapacity = 100

// EventLog is a fixed-capacity ring buffer of human-readable notices.
// Once full, each append overwrites the oldest entry.
type EventLog struct {
	entries [EventLogCapacity]string
	start   int
	size    int
}

// Append adds an entry, dropping the oldest one when the log is full.
func (l *EventLog) Append(entry string) {
	if l.size < EventLogCapacity {
		l.entries[(l.start+l.size)%EventLogCapacity] = entry
		l.size++
		return
	}
	l.entries[l.start] = entry
	l.start = (l.start + 1) % EventLogCapacity
}

// Len returns the number of stored entries.
func (l *EventLog) Len() int {
	return l.size
}

// Entries returns a copy of the log, oldest first.
func (l *EventLog) Entries() []string {
	out := make([]string, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.entries[(l.start+i)%EventLogCapacity]
	}
	return out
}

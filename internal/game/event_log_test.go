// internal/game/event_log_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogKeepsInsertionOrder(t *testing.T) {
	var l EventLog
	l.Append("a")
	l.Append("b")
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"a", "b"}, l.Entries())
}

func TestEventLogDropsOldest(t *testing.T) {
	var l EventLog
	for i := range EventLogCapacity + 25 {
		l.Append(fmt.Sprintf("entry %d", i))
	}
	entries := l.Entries()
	require.Len(t, entries, EventLogCapacity)
	assert.Equal(t, "entry 25", entries[0])
	assert.Equal(t, fmt.Sprintf("entry %d", EventLogCapacity+24), entries[len(entries)-1])
}

func TestEventLogEntriesIsACopy(t *testing.T) {
	var l EventLog
	l.Append("a")
	entries := l.Entries()
	entries[0] = "changed"
	assert.Equal(t, []string{"a"}, l.Entries())
}

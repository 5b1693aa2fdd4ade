// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongdong-game/dongdong/internal/cache"
)

// chanSource hands out records from a channel and reports an empty poll when
// none is ready.
type chanSource struct {
	ch chan cache.ActionRecord
}

func (s *chanSource) Pop(ctx context.Context, wait time.Duration) (*cache.ActionRecord, error) {
	select {
	case rec := <-s.ch:
		return &rec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wait):
		return nil, nil
	}
}

type memorySink struct {
	mu      sync.Mutex
	batches [][]cache.ActionRecord
	err     error
}

func (m *memorySink) InsertRoomActions(_ context.Context, records []cache.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, records)
	return nil
}

func (m *memorySink) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func record(i int) cache.ActionRecord {
	return cache.ActionRecord{ID: uuid.New(), RoomID: "0001", ActionIndex: i, ActionType: "place_bet"}
}

func TestFlushWhenBatchIsFull(t *testing.T) {
	src := &chanSource{ch: make(chan cache.ActionRecord, 10)}
	sink := &memorySink{}
	svc := New(src, sink, Config{BatchSize: 3, FlushDelay: time.Hour, PollWait: 10 * time.Millisecond, Logger: quiet()})

	for i := 1; i <= 3; i++ {
		src.ch <- record(i)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.total() == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.batches, 1)
	assert.Equal(t, 1, sink.batches[0][0].ActionIndex)
	assert.Equal(t, 3, sink.batches[0][2].ActionIndex)
}

func TestFlushAfterDelay(t *testing.T) {
	src := &chanSource{ch: make(chan cache.ActionRecord, 10)}
	sink := &memorySink{}
	svc := New(src, sink, Config{BatchSize: 100, FlushDelay: 20 * time.Millisecond, PollWait: 5 * time.Millisecond, Logger: quiet()})

	src.ch <- record(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	require.Eventually(t, func() bool { return sink.total() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, svc.Pending())
}

func TestFinalFlushOnShutdown(t *testing.T) {
	src := &chanSource{ch: make(chan cache.ActionRecord, 10)}
	sink := &memorySink{}
	svc := New(src, sink, Config{BatchSize: 100, FlushDelay: time.Hour, PollWait: 5 * time.Millisecond, Logger: quiet()})

	src.ch <- record(1)
	src.ch <- record(2)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return svc.Pending() == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 2, sink.total())
}

func TestFailedFlushDropsBatch(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	svc := New(&chanSource{ch: make(chan cache.ActionRecord)}, sink, Config{Logger: quiet()})

	svc.append(record(1))
	svc.flush(context.Background())
	assert.Zero(t, svc.Pending())
	assert.Zero(t, sink.total())
}

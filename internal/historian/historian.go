// internal/historian/historian.go
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/cache"
)

// Defaults used when Config leaves a field at zero.
const (
	DefaultBatchSize  = 20
	DefaultFlushDelay = 500 * time.Millisecond
	DefaultPollWait   = 3 * time.Second
)

// Source yields queued action records. Pop returns (nil, nil) when nothing
// arrived within wait.
type Source interface {
	Pop(ctx context.Context, wait time.Duration) (*cache.ActionRecord, error)
}

// Sink persists a batch of records.
type Sink interface {
	InsertRoomActions(ctx context.Context, records []cache.ActionRecord) error
}

// Config tunes batching.
type Config struct {
	BatchSize  int
	FlushDelay time.Duration
	PollWait   time.Duration
	Logger     logrus.FieldLogger
}

// Service drains the action queue into the archive in batches. A batch is
// written when it reaches BatchSize or when FlushDelay has passed since the
// last flush, whichever comes first.
type Service struct {
	src    Source
	sink   Sink
	cfg    Config
	logger logrus.FieldLogger

	batchMu sync.Mutex
	batch   []cache.ActionRecord
}

// New returns a service reading from src and writing to sink.
func New(src Source, sink Sink, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = DefaultFlushDelay
	}
	if cfg.PollWait <= 0 {
		cfg.PollWait = DefaultPollWait
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Service{
		src:    src,
		sink:   sink,
		cfg:    cfg,
		logger: cfg.Logger,
		batch:  make([]cache.ActionRecord, 0, cfg.BatchSize),
	}
}

// Run pops records until ctx is cancelled, then flushes whatever is left.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("historian started")
	lastFlush := time.Now()
	for {
		if ctx.Err() != nil {
			break
		}
		if time.Since(lastFlush) >= s.cfg.FlushDelay {
			s.flush(ctx)
			lastFlush = time.Now()
		}

		rec, err := s.src.Pop(ctx, s.cfg.PollWait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			s.logger.WithError(err).Error("pop failed")
			continue
		}
		if rec == nil {
			continue
		}
		if s.append(*rec) {
			s.flush(ctx)
			lastFlush = time.Now()
		}
	}

	// drain with a fresh context so the final batch is not lost to cancellation
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.logger.Info("historian stopped")
	return nil
}

// append adds a record and reports whether the batch is full.
func (s *Service) append(rec cache.ActionRecord) bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	return len(s.batch) >= s.cfg.BatchSize
}

// flush writes the pending batch. On failure the records are dropped and
// logged; the queue is not replayed.
func (s *Service) flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	pending := make([]cache.ActionRecord, len(s.batch))
	copy(pending, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.sink.InsertRoomActions(ctx, pending); err != nil {
		s.logger.WithError(err).WithField("records", len(pending)).Error("flush failed")
		return
	}
	s.logger.WithField("records", len(pending)).Debug("flushed actions")
}

// Pending returns the number of buffered records.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

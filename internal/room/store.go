// internal/room/store.go
package room

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/game"
	"github.com/dongdong-game/dongdong/internal/randutil"
)

// Room codes are four decimal digits.
const (
	codeDigits   = 4
	codeSpace    = 10000
	codeAttempts = 64
)

// ErrNoFreeCode is returned when Create cannot find an unused room code.
var ErrNoFreeCode = errors.New("no free room code")

// RandSource supplies randomness for room codes.
type RandSource interface {
	IntN(n int) int
}

// Config holds what every room created by a Store shares.
type Config struct {
	Clock       quartz.Clock
	RoundDelay  time.Duration
	Logger      *logrus.Logger
	Publisher   game.ActionPublisher
	HiddenHands bool
	OnGameOver  GameOverFunc
	// Seed makes code generation and every room's deals reproducible.
	// Zero means seed from the current time.
	Seed int64
}

// Store manages active rooms in memory, keyed by room code.
type Store struct {
	cfg Config

	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewStore returns an empty store.
func NewStore(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Store{
		cfg:   cfg,
		rooms: make(map[string]*Room),
		rng:   randutil.New(seed),
	}
}

// Create opens a new room under a fresh code. The room removes itself from
// the store once its last connection leaves.
func (s *Store) Create() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.freeCodeLocked(s.rng)
	if err != nil {
		return nil, err
	}

	logger := s.cfg.Logger.WithField("room", code)
	opts := []game.Option{
		game.WithRoomID(code),
		game.WithRand(randutil.Child(s.rng)),
		game.WithLogger(logger),
	}
	if s.cfg.Publisher != nil {
		opts = append(opts, game.WithPublisher(s.cfg.Publisher))
	}
	if s.cfg.HiddenHands {
		opts = append(opts, game.WithHiddenHands())
	}

	r := New(code, game.NewEngine(opts...), s.cfg.Clock, s.cfg.RoundDelay, logrus.NewEntry(s.cfg.Logger))
	r.OnGameOver = s.cfg.OnGameOver
	r.OnEmpty = s.Delete
	s.rooms[code] = r
	logger.Info("room created")
	return r, nil
}

// freeCodeLocked draws codes until it finds one not in use.
func (s *Store) freeCodeLocked(src RandSource) (string, error) {
	if len(s.rooms) >= codeSpace {
		return "", ErrNoFreeCode
	}
	for range codeAttempts {
		code := fmt.Sprintf("%0*d", codeDigits, src.IntN(codeSpace))
		if _, taken := s.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrNoFreeCode, codeAttempts)
}

// Get returns the room with the given code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Delete closes and forgets a room. Unknown codes are ignored.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	r, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()

	if ok {
		r.Close()
		s.cfg.Logger.WithField("room", code).Info("room deleted")
	}
}

// Len returns the number of active rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// CloseAll closes every room. Used on shutdown.
func (s *Store) CloseAll() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for code, r := range s.rooms {
		rooms = append(rooms, r)
		delete(s.rooms, code)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}

// internal/room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/game"
)

// DefaultRoundDelay is the pause between a round's last trick and the next deal.
const DefaultRoundDelay = 5 * time.Second

// ErrClosed is returned when connecting to a room that has been shut down.
var ErrClosed = errors.New("room closed")

// GameOverFunc receives the final standings of a finished match.
type GameOverFunc func(code string, standings []game.Standing)

// Room owns one engine and every connection attached to it. All engine access
// goes through the room mutex, so intents are applied one at a time and each
// broadcast reflects exactly the state its intent produced.
type Room struct {
	Code string

	mu         sync.Mutex
	engine     *game.Engine
	conns      map[uuid.UUID]*Conn
	clock      quartz.Clock
	roundDelay time.Duration
	timer      *quartz.Timer
	logger     *logrus.Entry
	closed     bool
	reported   bool

	// OnGameOver is called once per finished match, outside the room lock.
	OnGameOver GameOverFunc
	// OnEmpty is called when the last connection leaves.
	OnEmpty func(code string)
}

// New wraps engine in a room. A nil clock means the real clock.
func New(code string, engine *game.Engine, clock quartz.Clock, roundDelay time.Duration, logger *logrus.Entry) *Room {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if roundDelay <= 0 {
		roundDelay = DefaultRoundDelay
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Room{
		Code:       code,
		engine:     engine,
		conns:      make(map[uuid.UUID]*Conn),
		clock:      clock,
		roundDelay: roundDelay,
		logger:     logger.WithField("room", code),
	}
}

// Connect attaches a participant named name. The name is seated, reconnected
// to its old seat, or added as a spectator depending on the room's state.
// A name held by a connected player is refused with game.ErrNameTaken.
func (r *Room) Connect(name string) (*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	res := r.engine.Apply(game.Intent{Action: game.ActionJoin, Name: name})
	if !res.OK {
		return nil, res.Err
	}

	c := newConn(name)
	r.conns[c.ID] = c
	r.logger.WithFields(logrus.Fields{"player": name, "conn": c.ID}).Info("connected")
	r.broadcastLocked()
	return c, nil
}

// Disconnect detaches c. The seat is released in the lobby and kept during a
// match so the player can rejoin under the same name.
func (r *Room) Disconnect(c *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[c.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c.ID)
	c.close()
	if !r.nameAttachedLocked(c.Name) {
		r.engine.Disconnect(c.Name)
	}
	r.logger.WithFields(logrus.Fields{"player": c.Name, "conn": c.ID}).Info("disconnected")

	empty := len(r.conns) == 0
	if empty {
		r.closeLocked()
	} else {
		r.broadcastLocked()
	}
	onEmpty := r.OnEmpty
	r.mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty(r.Code)
	}
}

// Apply runs one intent for the participant on c. Accepted intents are
// broadcast to the whole room; rejections go back to c only, except a
// forbidden bet which is also broadcast so everyone sees the attempt.
func (r *Room) Apply(c *Conn, in game.Intent) game.Result {
	res := r.apply(c, in)
	if res.OK {
		r.reportGameOver()
	}
	return res
}

func (r *Room) apply(c *Conn, in game.Intent) game.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	in.Name = c.Name
	res := r.engine.Apply(in)
	if !res.OK {
		r.sendErrorLocked(c, res.Reason)
		if errors.Is(res.Err, game.ErrForbiddenBet) {
			r.broadcastLocked()
		}
		return res
	}
	r.broadcastLocked()
	r.afterTransitionLocked()
	return res
}

// Snapshot returns the current state with every hand visible.
func (r *Room) Snapshot() game.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// Pong answers a client ping.
func (r *Room) Pong(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := encode(Message{Type: MessagePong})
	if err != nil {
		return
	}
	c.send(data, r.logger)
}

// SendError reports msg to c only.
func (r *Room) SendError(c *Conn, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sendErrorLocked(c, msg)
}

// BroadcastError reports an unexpected fault to every connection in the room.
func (r *Room) BroadcastError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := encode(Message{Type: MessageError, Message: msg})
	if err != nil {
		return
	}
	for _, c := range r.conns {
		c.send(data, r.logger)
	}
}

// Len returns the number of attached connections.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Close stops the pending round timer and drops every connection.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	for id, c := range r.conns {
		c.close()
		delete(r.conns, id)
	}
}

func (r *Room) nameAttachedLocked(name string) bool {
	for _, c := range r.conns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// afterTransitionLocked arms the deferred next round after a round ends.
func (r *Room) afterTransitionLocked() {
	if r.engine.State() != game.StateRoundOver {
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		return
	}
	if r.timer != nil || r.closed {
		return
	}
	r.timer = r.clock.AfterFunc(r.roundDelay, r.nextRound, "room", "next_round")
}

// nextRound is the timer callback. The room may have been reset while the
// timer was pending, in which case the engine ignores the call.
func (r *Room) nextRound() {
	r.advanceRound()
	r.reportGameOver()
}

func (r *Room) advanceRound() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timer = nil
	if r.closed {
		return
	}
	advanced, err := r.engine.NextRound()
	if err != nil {
		r.logger.WithError(err).Error("failed to start next round")
	}
	if advanced {
		r.broadcastLocked()
		r.afterTransitionLocked()
	}
}

func (r *Room) reportGameOver() {
	r.mu.Lock()
	if r.engine.State() != game.StateGameOver {
		// a match abandoned back to the lobby may be played again
		r.reported = false
		r.mu.Unlock()
		return
	}
	if r.reported {
		r.mu.Unlock()
		return
	}
	r.reported = true
	standings := r.engine.Standings()
	hook := r.OnGameOver
	r.mu.Unlock()

	r.logger.WithField("standings", standings).Info("match finished")
	if hook != nil {
		hook(r.Code, standings)
	}
}

func (r *Room) broadcastLocked() {
	for _, c := range r.conns {
		snap := r.engine.SnapshotFor(c.Name)
		data, err := encode(Message{Type: MessageGameState, Payload: &snap})
		if err != nil {
			r.logger.WithError(err).Error("failed to encode snapshot")
			return
		}
		c.send(data, r.logger)
	}
}

func (r *Room) sendErrorLocked(c *Conn, msg string) {
	data, err := encode(Message{Type: MessageError, Message: msg})
	if err != nil {
		return
	}
	c.send(data, r.logger)
}

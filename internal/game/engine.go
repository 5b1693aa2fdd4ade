// internal/game/engine.go
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dongdong-game/dongdong/internal/cache"
	"github.com/dongdong-game/dongdong/internal/randutil"
)

// Match limits.
const (
	MaxPlayers = 4
	MinPlayers = 2
	MaxRounds  = 13
)

// ActionPublisher receives the engine's action history. Publish is called from
// a separate goroutine so it may block on I/O.
type ActionPublisher interface {
	Publish(ctx context.Context, record cache.ActionRecord) error
}

// Engine is the rule engine for one room. It is not safe for concurrent use;
// the owning room serializes every call.
type Engine struct {
	roomID string

	players    []*Player
	spectators []string
	events     EventLog

	state   State
	message string

	currentRound   int
	masterColor    *Color
	secondaryColor *Color

	colorMasterIndex int
	turnPlayerIndex  int
	trickLeaderIndex int
	betsMade         int

	currentTrick    map[string]Tile
	trickOrder      []string
	lastTrickWinner string

	// seatedAtStart holds every name seated when the match started, so a
	// disconnected seat can be reclaimed by rejoining under the same name.
	seatedAtStart map[string]bool

	hideHands bool

	rng         *rand.Rand
	logger      logrus.FieldLogger
	publisher   ActionPublisher
	actionIndex int
}

// Option configures an Engine during creation.
type Option func(*Engine)

// WithRand sets the source used for shuffling and master color draws.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPublisher sends every accepted action to p.
func WithPublisher(p ActionPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithRoomID tags action records with the room code.
func WithRoomID(id string) Option {
	return func(e *Engine) { e.roomID = id }
}

// WithHiddenHands makes SnapshotFor hide opponents' hands.
func WithHiddenHands() Option {
	return func(e *Engine) { e.hideHands = true }
}

// NewEngine returns an engine in the Lobby state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state:         StateLobby,
		message:       "Waiting for players to join the lobby.",
		currentTrick:  make(map[string]Tile),
		seatedAtStart: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = randutil.New(time.Now().UnixNano())
	}
	if e.logger == nil {
		e.logger = logrus.StandardLogger()
	}
	e.events.Append("Lobby created. Waiting for players...")
	return e
}

// State returns the current phase.
func (e *Engine) State() State { return e.state }

// CurrentRound returns the round number, 0 before the first deal.
func (e *Engine) CurrentRound() int { return e.currentRound }

// MasterColor returns the round's trump, if one has been drawn.
func (e *Engine) MasterColor() (Color, bool) {
	if e.masterColor == nil {
		return 0, false
	}
	return *e.masterColor, true
}

// ColorMasterIndex returns the seat that bids and leads first this round.
func (e *Engine) ColorMasterIndex() int { return e.colorMasterIndex }

// Player returns the seated player with the given name.
func (e *Engine) Player(name string) (*Player, bool) {
	idx := e.playerIndex(name)
	if idx < 0 {
		return nil, false
	}
	return e.players[idx], true
}

// PlayerCount returns the number of seats, connected or not.
func (e *Engine) PlayerCount() int { return len(e.players) }

// HostName returns the name at seat 0, or "" when the room has no players.
func (e *Engine) HostName() string {
	if len(e.players) == 0 {
		return ""
	}
	return e.players[0].Name
}

// HasConnectedPlayer reports whether a connected seat uses name.
func (e *Engine) HasConnectedPlayer(name string) bool {
	p, ok := e.Player(name)
	return ok && p.Connected
}

// CurrentTurnPlayer returns the player whose action is expected, or false
// when there is no such player.
func (e *Engine) CurrentTurnPlayer() (*Player, bool) {
	if len(e.players) == 0 || e.turnPlayerIndex < 0 || e.turnPlayerIndex >= len(e.players) {
		return nil, false
	}
	return e.players[e.turnPlayerIndex], true
}

func (e *Engine) playerIndex(name string) int {
	return slices.IndexFunc(e.players, func(p *Player) bool { return p.Name == name })
}

// advanceTurn moves the turn pointer one seat clockwise.
func (e *Engine) advanceTurn() {
	e.turnPlayerIndex = (e.turnPlayerIndex + 1) % len(e.players)
}

// logEvent appends a notice to the room's shared event log.
func (e *Engine) logEvent(format string, args ...any) {
	e.events.Append(fmt.Sprintf(format, args...))
}

// Join seats, reconnects or spectates name, following the order: reclaim a
// disconnected seat, reject a name held by a connected player, take a free
// seat in the lobby, otherwise watch.
func (e *Engine) Join(name string) error {
	if p, ok := e.Player(name); ok {
		if p.Connected {
			return ErrNameTaken
		}
		return e.Reconnect(name)
	}
	if e.state == StateLobby && len(e.players) < MaxPlayers {
		return e.AddPlayer(name)
	}
	e.AddSpectator(name)
	return nil
}

// AddPlayer seats a new player. Only allowed in the lobby.
func (e *Engine) AddPlayer(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty player name", ErrMalformedIntent)
	}
	if err := e.requireState(StateLobby); err != nil {
		return err
	}
	if len(e.players) >= MaxPlayers {
		return ErrRoomFull
	}
	if e.playerIndex(name) >= 0 {
		return ErrNameTaken
	}
	e.players = append(e.players, NewPlayer(name))
	e.message = fmt.Sprintf("%s joined the game. Waiting for more players...", name)
	e.logEvent("➡️ %s joined as a player.", name)
	e.logAction(name, "player_join", nil)
	return nil
}

// AddSpectator registers a passive viewer. Duplicate names are ignored.
func (e *Engine) AddSpectator(name string) {
	if slices.Contains(e.spectators, name) {
		return
	}
	e.spectators = append(e.spectators, name)
	e.logEvent("➡️ %s started spectating.", name)
}

// Reconnect restores a disconnected seat.
func (e *Engine) Reconnect(name string) error {
	p, ok := e.Player(name)
	if !ok {
		return ErrUnknownPlayer
	}
	if p.Connected {
		return ErrNameTaken
	}
	p.Connected = true
	e.message = fmt.Sprintf("%s reconnected.", name)
	e.logEvent("🔌 %s reconnected.", name)
	e.logAction(name, "player_reconnect", nil)
	return nil
}

// Disconnect handles a dropped connection. In the lobby the seat is freed;
// during a match it is kept and marked disconnected so it can be reclaimed.
func (e *Engine) Disconnect(name string) {
	if idx := slices.Index(e.spectators, name); idx >= 0 {
		e.spectators = slices.Delete(e.spectators, idx, idx+1)
		return
	}
	p, ok := e.Player(name)
	if !ok {
		return
	}
	if e.state == StateLobby || !e.seatedAtStart[name] {
		e.Remove(name)
		return
	}
	if !p.Connected {
		return
	}
	p.Connected = false
	e.message = fmt.Sprintf("%s disconnected.", name)
	e.logEvent("🔌 %s disconnected.", name)
	e.logAction(name, "player_disconnect", nil)
}

// Remove takes name off the roster. When the last player leaves, the engine
// abandons any match in progress and returns to the lobby.
func (e *Engine) Remove(name string) {
	idx := e.playerIndex(name)
	wasSpectator := slices.Contains(e.spectators, name)
	if idx < 0 && !wasSpectator {
		return
	}
	e.spectators = slices.DeleteFunc(e.spectators, func(s string) bool { return s == name })
	if idx >= 0 {
		e.players = slices.Delete(e.players, idx, idx+1)
		delete(e.currentTrick, name)
		e.trickOrder = slices.DeleteFunc(e.trickOrder, func(s string) bool { return s == name })
		e.fixIndicesAfterRemoval(idx)
	}

	e.message = fmt.Sprintf("%s left the game.", name)
	e.logEvent("⬅️ %s left the game.", name)
	e.logAction(name, "player_leave", nil)

	if len(e.players) == 0 && e.state != StateLobby {
		e.resetToLobby()
		e.logEvent("All players left. Game has returned to the lobby.")
		return
	}
	if idx < 0 {
		return
	}
	switch e.state {
	case StateAwaitingBets:
		e.betsMade = 0
		for _, p := range e.players {
			if p.HasBid {
				e.betsMade++
			}
		}
		e.finishBettingIfComplete()
	case StateAwaitingPlay:
		if len(e.currentTrick) > 0 && len(e.currentTrick) == len(e.players) {
			e.resolveTrick()
		}
	}
}

// fixIndicesAfterRemoval keeps the rotating indices pointing at valid seats.
func (e *Engine) fixIndicesAfterRemoval(removed int) {
	n := len(e.players)
	fix := func(i int) int {
		if n == 0 {
			return 0
		}
		if i > removed {
			i--
		}
		return i % n
	}
	e.turnPlayerIndex = fix(e.turnPlayerIndex)
	e.trickLeaderIndex = fix(e.trickLeaderIndex)
	e.colorMasterIndex = fix(e.colorMasterIndex)
}

// resetToLobby abandons the match.
func (e *Engine) resetToLobby() {
	e.state = StateLobby
	e.message = "Waiting for players to join the lobby."
	e.currentRound = 0
	e.masterColor = nil
	e.secondaryColor = nil
	e.colorMasterIndex = 0
	e.turnPlayerIndex = 0
	e.trickLeaderIndex = 0
	e.betsMade = 0
	e.currentTrick = make(map[string]Tile)
	e.trickOrder = nil
	e.lastTrickWinner = ""
	e.seatedAtStart = make(map[string]bool)
}

// logAction hands an action record to the publisher without blocking the engine.
func (e *Engine) logAction(actor, actionType string, payload map[string]any) {
	if e.publisher == nil {
		return
	}
	e.actionIndex++
	if payload == nil {
		payload = make(map[string]any)
	}
	record := cache.ActionRecord{
		ID:            uuid.New(),
		RoomID:        e.roomID,
		ActionIndex:   e.actionIndex,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.publisher.Publish(ctx, rec); err != nil {
			e.logger.WithError(err).WithField("action_index", rec.ActionIndex).Warn("failed to publish room action")
		}
	}(record)
}

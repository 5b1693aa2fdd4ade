// internal/game/state.go
package game

import (
	"fmt"
	"strings"
)

// State is the engine's phase. The set is closed; every intent is checked
// against it before any mutation.
type State int

const (
	StateLobby State = iota
	StateRoundStarting
	StateAwaitingBets
	StateAwaitingPlay
	StateTrickResolving
	StateRoundOver
	StateGameOver
)

var stateNames = [...]string{
	StateLobby:          "LOBBY",
	StateRoundStarting:  "ROUND_STARTING",
	StateAwaitingBets:   "AWAITING_BETS",
	StateAwaitingPlay:   "AWAITING_PLAY",
	StateTrickResolving: "TRICK_RESOLVING",
	StateRoundOver:      "ROUND_OVER",
	StateGameOver:       "GAME_OVER",
}

func (s State) String() string {
	if s < StateLobby || s > StateGameOver {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state using its wire name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a wire name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", text)
}

// StateError is returned when an intent arrives in a phase that does not accept it.
type StateError struct {
	Want []State
	Got  State
}

func (e *StateError) Error() string {
	want := make([]string, len(e.Want))
	for i, s := range e.Want {
		want[i] = s.String()
	}
	return fmt.Sprintf("action not allowed in state %s (want %s)", e.Got, strings.Join(want, " or "))
}

// requireState returns a *StateError unless the engine is in one of want.
func (e *Engine) requireState(want ...State) error {
	for _, s := range want {
		if e.state == s {
			return nil
		}
	}
	return &StateError{Want: want, Got: e.state}
}

// internal/game/intent.go
package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Intent actions.
const (
	ActionJoin      = "join"
	ActionSpectate  = "spectate"
	ActionLeave     = "leave"
	ActionStartGame = "start_game"
	ActionPlaceBet  = "place_bet"
	ActionPlayTile  = "play_tile"
)

// Intent is one request from a participant. Name is the caller identity and
// is filled in by the transport, never taken from the payload.
type Intent struct {
	Action  string          `json:"action"`
	Name    string          `json:"-"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result reports whether an intent was applied. Rejected intents leave the
// engine untouched apart from the forbidden-bet notice.
type Result struct {
	OK     bool
	Reason string
	Err    error
}

func accepted() Result { return Result{OK: true} }

func rejected(err error) Result {
	return Result{Reason: err.Error(), Err: err}
}

type betPayload struct {
	Amount *int `json:"amount"`
}

type tilePayload struct {
	Tile *struct {
		Number *int    `json:"number"`
		Color  *string `json:"color"`
	} `json:"tile"`
}

// Apply validates and executes one intent.
func (e *Engine) Apply(in Intent) Result {
	if in.Name == "" {
		return rejected(fmt.Errorf("%w: missing caller name", ErrMalformedIntent))
	}

	var err error
	switch in.Action {
	case ActionJoin:
		err = e.Join(in.Name)
	case ActionSpectate:
		if e.HasConnectedPlayer(in.Name) {
			err = ErrNameTaken
			break
		}
		e.AddSpectator(in.Name)
	case ActionLeave:
		e.Remove(in.Name)
	case ActionStartGame:
		if in.Name != e.HostName() {
			err = ErrNotHost
			break
		}
		err = e.StartNewGame()
	case ActionPlaceBet:
		var amount int
		amount, err = decodeBet(in.Payload)
		if err == nil {
			err = e.PlaceBet(in.Name, amount)
		}
		if errors.Is(err, ErrForbiddenBet) {
			e.logEvent("🚫 %s tried to bet %d, but it's not allowed.", in.Name, amount)
		}
	case ActionPlayTile:
		var tile Tile
		tile, err = DecodeTile(in.Payload)
		if err == nil {
			err = e.PlayTile(in.Name, tile)
		}
	default:
		err = fmt.Errorf("%w: unknown action %q", ErrMalformedIntent, in.Action)
	}

	if err != nil {
		e.logger.WithFields(map[string]any{
			"room":   e.roomID,
			"player": in.Name,
			"action": in.Action,
		}).WithError(err).Warn("intent rejected")
		return rejected(err)
	}
	return accepted()
}

func decodeBet(raw json.RawMessage) (int, error) {
	var p betPayload
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: missing payload", ErrMalformedIntent)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}
	if p.Amount == nil {
		return 0, fmt.Errorf("%w: missing amount", ErrMalformedIntent)
	}
	return *p.Amount, nil
}

// DecodeTile reads a {"tile": {"number": n, "color": "Red"}} payload.
func DecodeTile(raw json.RawMessage) (Tile, error) {
	var p tilePayload
	if len(raw) == 0 {
		return Tile{}, fmt.Errorf("%w: missing payload", ErrMalformedIntent)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Tile{}, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}
	if p.Tile == nil || p.Tile.Number == nil || p.Tile.Color == nil {
		return Tile{}, fmt.Errorf("%w: invalid tile", ErrMalformedIntent)
	}
	color, err := ParseColor(*p.Tile.Color)
	if err != nil {
		return Tile{}, fmt.Errorf("%w: %v", ErrMalformedIntent, err)
	}
	t := Tile{Number: *p.Tile.Number, Color: color}
	if !t.Valid() {
		return Tile{}, fmt.Errorf("%w: invalid tile %s", ErrMalformedIntent, t)
	}
	return t, nil
}

// internal/game/snapshot.go
package game

import (
	"encoding/json"
	"maps"
	"slices"
)

// PlayerView is one player as seen in a snapshot.
type PlayerView struct {
	Name      string `json:"name"`
	Hand      []Tile `json:"hand"`
	HandSize  int    `json:"handSize"`
	Score     int    `json:"score"`
	Bet       int    `json:"bet"`
	TricksWon int    `json:"tricksWon"`
	Connected bool   `json:"connected"`
}

// HostName serializes as the host's name, or false when the room is empty.
type HostName string

func (h HostName) MarshalJSON() ([]byte, error) {
	if h == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(h))
}

func (h *HostName) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*h = ""
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*h = HostName(name)
	return nil
}

// Snapshot is the full room state sent to clients after every intent.
type Snapshot struct {
	GameState         State           `json:"gameState"`
	Message           string          `json:"message"`
	Players           []PlayerView    `json:"players"`
	Spectators        []string        `json:"spectators"`
	EventLog          []string        `json:"eventLog"`
	TurnPlayerName    string          `json:"turnPlayerName"`
	IsHost            HostName        `json:"isHost"`
	CurrentRound      int             `json:"currentRound"`
	MasterColor       *Color          `json:"masterColor"`
	CurrentTrickPlays map[string]Tile `json:"currentTrickPlays"`
	BettingInfo       BettingInfo     `json:"bettingInfo"`
}

// Snapshot returns the state with every hand visible.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot("", false)
}

// SnapshotFor returns the state as seen by viewer. Unless the engine was built
// with WithHiddenHands this is the same as Snapshot.
func (e *Engine) SnapshotFor(viewer string) Snapshot {
	return e.snapshot(viewer, e.hideHands)
}

func (e *Engine) snapshot(viewer string, hide bool) Snapshot {
	snap := Snapshot{
		GameState:         e.state,
		Message:           e.message,
		Players:           make([]PlayerView, 0, len(e.players)),
		Spectators:        slices.Clone(e.spectators),
		EventLog:          e.events.Entries(),
		IsHost:            HostName(e.HostName()),
		CurrentRound:      e.currentRound,
		CurrentTrickPlays: maps.Clone(e.currentTrick),
		BettingInfo:       e.BettingInfo(),
	}
	if snap.Spectators == nil {
		snap.Spectators = []string{}
	}
	if e.masterColor != nil {
		master := *e.masterColor
		snap.MasterColor = &master
	}
	if tp, ok := e.CurrentTurnPlayer(); ok {
		snap.TurnPlayerName = tp.Name
	}

	for _, p := range e.players {
		pv := PlayerView{
			Name:      p.Name,
			Hand:      []Tile{},
			HandSize:  len(p.Hand),
			Score:     p.Score,
			Bet:       p.Bet,
			TricksWon: p.TricksWon,
			Connected: p.Connected,
		}
		if !hide || p.Name == viewer {
			pv.Hand = slices.Clone(p.Hand)
			if pv.Hand == nil {
				pv.Hand = []Tile{}
			}
			SortTiles(pv.Hand)
		}
		snap.Players = append(snap.Players, pv)
	}
	return snap
}

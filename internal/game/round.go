// internal/game/round.go
package game

import (
	"fmt"
	"slices"
)

// Standing is one line of the final scoreboard.
type Standing struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Rank  int    `json:"rank"`
}

// StartNewGame resets scores and rotation and deals round 1.
func (e *Engine) StartNewGame() error {
	if err := e.requireState(StateLobby); err != nil {
		return err
	}
	if len(e.players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	e.logEvent("🏁 Game started by %s with %d players.", e.players[0].Name, len(e.players))
	e.logAction(e.players[0].Name, "game_start", map[string]any{"players": len(e.players)})

	e.currentRound = 0
	e.colorMasterIndex = 0
	e.seatedAtStart = make(map[string]bool, len(e.players))
	for _, p := range e.players {
		p.Score = 0
		e.seatedAtStart[p.Name] = true
	}
	return e.StartNewRound()
}

// StartNewRound advances the round counter and deals. Past the last round
// the match ends instead.
func (e *Engine) StartNewRound() error {
	if e.currentRound >= MaxRounds {
		e.endGame()
		return nil
	}
	e.currentRound++

	e.state = StateRoundStarting
	e.logEvent("🔄 Starting Round %d...", e.currentRound)

	for _, p := range e.players {
		p.ResetForRound()
	}
	e.currentTrick = make(map[string]Tile)
	e.trickOrder = nil
	e.secondaryColor = nil

	if err := e.deal(); err != nil {
		e.logger.WithError(err).WithField("round", e.currentRound).Error("deal failed")
		return err
	}

	master := Colors[e.rng.IntN(len(Colors))]
	e.masterColor = &master
	e.logEvent("👑 Master Color is %s.", master)

	e.trickLeaderIndex = e.colorMasterIndex
	e.turnPlayerIndex = e.colorMasterIndex
	e.betsMade = 0

	e.state = StateAwaitingBets
	bidder := e.players[e.turnPlayerIndex].Name
	e.message = fmt.Sprintf("Round %d. Master: %s. %s to bet.", e.currentRound, master, bidder)
	e.logEvent("Bidding starts with %s.", bidder)
	e.logAction("", "round_start", map[string]any{
		"round":       e.currentRound,
		"masterColor": master.String(),
		"hands":       e.handsPayload(),
	})
	return nil
}

// deal shuffles a fresh deck and hands out currentRound tiles to each seat,
// round-robin starting from seat 0.
func (e *Engine) deal() error {
	need := e.currentRound * len(e.players)
	if need > DeckSize {
		return fmt.Errorf("%w: round %d needs %d tiles for %d players", ErrDeckExhausted, e.currentRound, need, len(e.players))
	}
	deck := NewDeck()
	shuffleDeck(e.rng, deck)
	for range e.currentRound {
		for _, p := range e.players {
			last := len(deck) - 1
			p.Hand = append(p.Hand, deck[last])
			deck = deck[:last]
		}
	}
	return nil
}

// NextRound is the deferred transition after a round ends. It only acts while
// the engine is still in RoundOver and reports whether it did anything.
func (e *Engine) NextRound() (bool, error) {
	if e.state != StateRoundOver {
		return false, nil
	}
	return true, e.StartNewRound()
}

// endGame moves to the terminal state.
func (e *Engine) endGame() {
	e.state = StateGameOver
	e.message = "Game over! Final scores are on the board."
	e.logEvent("GAME OVER! Thanks for playing.")
	standings := e.Standings()
	scores := make(map[string]any, len(standings))
	for _, s := range standings {
		scores[s.Name] = s.Score
	}
	e.logAction("", "game_over", map[string]any{"scores": scores})
}

// Standings ranks the players by score, highest first. Ties share a rank.
func (e *Engine) Standings() []Standing {
	out := make([]Standing, len(e.players))
	for i, p := range e.players {
		out[i] = Standing{Seat: i, Name: p.Name, Score: p.Score}
	}
	slices.SortStableFunc(out, func(a, b Standing) int { return b.Score - a.Score })
	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

func (e *Engine) handsPayload() map[string]any {
	hands := make(map[string]any, len(e.players))
	for _, p := range e.players {
		hand := slices.Clone(p.Hand)
		SortTiles(hand)
		hands[p.Name] = hand
	}
	return hands
}

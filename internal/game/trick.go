// internal/game/trick.go
package game

import "fmt"

// TrickWinner picks the winning seat of a complete trick: the highest trump,
// else the highest tile of the lead color, else the leader.
func TrickWinner(plays map[string]Tile, master, lead Color, leader string) (string, Tile) {
	if name, t, ok := highestOfColor(plays, master); ok {
		return name, t
	}
	if name, t, ok := highestOfColor(plays, lead); ok {
		return name, t
	}
	return leader, plays[leader]
}

func highestOfColor(plays map[string]Tile, c Color) (string, Tile, bool) {
	var (
		best     Tile
		bestName string
		found    bool
	)
	for name, t := range plays {
		if t.Color != c {
			continue
		}
		// numbers are unique within a color, so there are no ties
		if !found || t.Number > best.Number {
			best, bestName, found = t, name, true
		}
	}
	return bestName, best, found
}

// resolveTrick scores the finished trick and either hands the lead to the
// winner or closes the round.
func (e *Engine) resolveTrick() {
	e.state = StateTrickResolving

	var master, lead Color
	if e.masterColor != nil {
		master = *e.masterColor
	}
	if e.secondaryColor != nil {
		lead = *e.secondaryColor
	}
	leader := e.players[e.trickLeaderIndex].Name
	if len(e.trickOrder) > 0 {
		leader = e.trickOrder[0]
	}
	winnerName, winningTile := TrickWinner(e.currentTrick, master, lead, leader)
	winnerIdx := e.playerIndex(winnerName)
	winner := e.players[winnerIdx]
	winner.TricksWon++
	e.lastTrickWinner = winnerName

	e.message = fmt.Sprintf("%s won with %s.", winnerName, winningTile)
	e.logEvent("🏆 %s won the trick with %s.", winnerName, winningTile)
	e.logAction(winnerName, "trick_won", map[string]any{"number": winningTile.Number, "color": winningTile.Color.String()})

	e.currentTrick = make(map[string]Tile)
	e.trickOrder = nil
	e.secondaryColor = nil
	e.trickLeaderIndex = winnerIdx
	e.turnPlayerIndex = winnerIdx

	if !e.allHandsEmpty() {
		e.state = StateAwaitingPlay
		e.message += fmt.Sprintf(" %s leads next.", winnerName)
		return
	}

	e.calculateScores()
	e.colorMasterIndex = (e.colorMasterIndex + 1) % len(e.players)
	if e.currentRound >= MaxRounds {
		e.endGame()
		return
	}
	e.state = StateRoundOver
	e.message += " Round over. Next round starts shortly."
	e.logEvent("Round Over.")
}

func (e *Engine) allHandsEmpty() bool {
	for _, p := range e.players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// internal/game/scoring.go
package game

// Exact bid bonus.
const exactBidBonus = 10

// RoundPoints is the score change for one player at round end: an exact bid
// earns 10 + bet², a miss in either direction costs the squared difference.
func RoundPoints(bet, tricksWon int) int {
	if bet == tricksWon {
		return exactBidBonus + bet*bet
	}
	diff := bet - tricksWon
	return -(diff * diff)
}

// calculateScores applies RoundPoints to every player. Called once per round.
func (e *Engine) calculateScores() {
	e.logEvent("--- Scoring ---")
	results := make(map[string]any, len(e.players))
	for _, p := range e.players {
		points := RoundPoints(p.Bet, p.TricksWon)
		p.Score += points

		result, sign := "Incorrect.", ""
		if points > 0 {
			result, sign = "Correct!", "+"
		}
		e.logEvent("  %s bet %d, won %d. %s (%s%d points).", p.Name, p.Bet, p.TricksWon, result, sign, points)
		results[p.Name] = map[string]any{"bet": p.Bet, "won": p.TricksWon, "points": points, "score": p.Score}
	}
	e.logAction("", "round_scored", map[string]any{"round": e.currentRound, "results": results})
}

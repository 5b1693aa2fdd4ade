// internal/game/betting.go
package game

import "fmt"

// BettingInfo tells clients whether the next bid is the last one of the round
// and which amount it may not be.
type BettingInfo struct {
	IsLastPlayer bool `json:"isLastPlayer"`
	ForbiddenBet int  `json:"forbiddenBet"`
}

// PlaceBet records the turn player's bid for the round.
//
// The last bidder may not name the amount that would make the bids add up to
// the round number; that attempt fails with ErrForbiddenBet.
func (e *Engine) PlaceBet(name string, amount int) error {
	if err := e.requireState(StateAwaitingBets); err != nil {
		return err
	}
	turnPlayer, ok := e.CurrentTurnPlayer()
	if !ok {
		return ErrNoPlayer
	}
	if name != turnPlayer.Name {
		return fmt.Errorf("%w: %s is expected to bet", ErrNotYourTurn, turnPlayer.Name)
	}
	if amount < 0 || amount > e.currentRound {
		return fmt.Errorf("%w: bet must be between 0 and %d", ErrBetOutOfRange, e.currentRound)
	}
	if e.isLastBidder() && e.totalBets()+amount == e.currentRound {
		return ErrForbiddenBet
	}

	turnPlayer.Bet = amount
	turnPlayer.HasBid = true
	e.logEvent("💰 %s bet %d.", name, amount)
	e.logAction(name, "place_bet", map[string]any{"amount": amount})
	e.betsMade++
	e.advanceTurn()
	e.finishBettingIfComplete()
	return nil
}

// finishBettingIfComplete moves to play once every seat has bid. Otherwise it
// names the next bidder.
func (e *Engine) finishBettingIfComplete() {
	if len(e.players) == 0 {
		return
	}
	if e.betsMade < len(e.players) {
		e.message = fmt.Sprintf("%s to bet.", e.players[e.turnPlayerIndex].Name)
		return
	}
	e.state = StateAwaitingPlay
	e.turnPlayerIndex = e.trickLeaderIndex
	e.message = fmt.Sprintf("All bets are in. %s starts.", e.players[e.turnPlayerIndex].Name)
	e.logEvent("All bets are in. The first trick begins.")
}

// BettingInfo reports the forbidden amount for the last bidder, or -1 when the
// next bid is not the last one.
func (e *Engine) BettingInfo() BettingInfo {
	if e.state != StateAwaitingBets || !e.isLastBidder() {
		return BettingInfo{ForbiddenBet: -1}
	}
	return BettingInfo{
		IsLastPlayer: true,
		ForbiddenBet: e.currentRound - e.totalBets(),
	}
}

func (e *Engine) isLastBidder() bool {
	return len(e.players) > 0 && e.betsMade == len(e.players)-1
}

func (e *Engine) totalBets() int {
	sum := 0
	for _, p := range e.players {
		sum += p.Bet
	}
	return sum
}

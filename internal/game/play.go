// internal/game/play.go
package game

import (
	"fmt"
	"slices"
)

// PlayTile plays one tile from the turn player's hand into the current trick.
// When the last seat has played, the trick is resolved before returning.
func (e *Engine) PlayTile(name string, tile Tile) error {
	if err := e.requireState(StateAwaitingPlay); err != nil {
		return err
	}
	turnPlayer, ok := e.CurrentTurnPlayer()
	if !ok {
		return ErrNoPlayer
	}
	if name != turnPlayer.Name {
		return fmt.Errorf("%w: %s is expected to play", ErrNotYourTurn, turnPlayer.Name)
	}
	if !tile.Valid() {
		return fmt.Errorf("%w: unknown tile %v", ErrMalformedIntent, tile)
	}
	if !turnPlayer.HasTile(tile) {
		return fmt.Errorf("%w: %s", ErrTileNotInHand, tile)
	}
	if !slices.Contains(e.ValidPlays(turnPlayer), tile) {
		return fmt.Errorf("%w: must play %s", ErrIllegalTile, *e.secondaryColor)
	}

	if len(e.currentTrick) == 0 {
		lead := tile.Color
		e.secondaryColor = &lead
		e.logEvent("♦️ Trick started. Lead color is %s.", lead)
	}

	turnPlayer.removeTile(tile)
	e.currentTrick[name] = tile
	e.trickOrder = append(e.trickOrder, name)
	e.logEvent("%s played %s.", name, tile)
	e.logAction(name, "play_tile", map[string]any{"number": tile.Number, "color": tile.Color.String()})

	e.advanceTurn()
	e.message = fmt.Sprintf("%s to play.", e.players[e.turnPlayerIndex].Name)

	if len(e.currentTrick) == len(e.players) {
		e.resolveTrick()
	}
	return nil
}

// ValidPlays lists the tiles p may play now. The first tile of a trick is
// free; after that a player holding the lead color must follow it.
func (e *Engine) ValidPlays(p *Player) []Tile {
	if e.secondaryColor == nil || len(e.currentTrick) == 0 {
		return slices.Clone(p.Hand)
	}
	lead := *e.secondaryColor
	var follow []Tile
	for _, t := range p.Hand {
		if t.Color == lead {
			follow = append(follow, t)
		}
	}
	if len(follow) == 0 {
		return slices.Clone(p.Hand)
	}
	return follow
}

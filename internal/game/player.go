// internal/game/player.go
package game

import "slices"

// Player is a seated participant. Name is the durable identity used for turn
// matching and reconnection.
type Player struct {
	Name      string
	Hand      []Tile
	Score     int
	Bet       int
	HasBid    bool
	TricksWon int
	Connected bool
}

// NewPlayer returns a connected player with an empty hand.
func NewPlayer(name string) *Player {
	return &Player{Name: name, Connected: true}
}

// ResetForRound clears the hand, bet and trick count. Score is kept.
func (p *Player) ResetForRound() {
	p.Hand = nil
	p.Bet = 0
	p.HasBid = false
	p.TricksWon = 0
}

// HasTile reports whether t is in the player's hand.
func (p *Player) HasTile(t Tile) bool {
	return slices.Contains(p.Hand, t)
}

// HoldsColor reports whether any tile in hand has color c.
func (p *Player) HoldsColor(c Color) bool {
	return slices.ContainsFunc(p.Hand, func(t Tile) bool { return t.Color == c })
}

// removeTile drops t from the hand. Returns false if it was not there.
func (p *Player) removeTile(t Tile) bool {
	idx := slices.Index(p.Hand, t)
	if idx < 0 {
		return false
	}
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	return true
}

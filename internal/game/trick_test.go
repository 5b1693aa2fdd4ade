// internal/game/trick_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrickWinner(t *testing.T) {
	tests := []struct {
		name       string
		plays      map[string]Tile
		master     Color
		lead       Color
		leader     string
		wantWinner string
	}{
		{
			name:       "highest lead color without trump",
			plays:      map[string]Tile{"a": tile(5, Red), "b": tile(11, Red), "c": tile(13, Blue)},
			master:     Orange,
			lead:       Red,
			leader:     "a",
			wantWinner: "b",
		},
		{
			name:       "any trump beats the lead color",
			plays:      map[string]Tile{"a": tile(13, Red), "b": tile(2, Orange), "c": tile(12, Red)},
			master:     Orange,
			lead:       Red,
			leader:     "a",
			wantWinner: "b",
		},
		{
			name:       "highest trump among several",
			plays:      map[string]Tile{"a": tile(4, Black), "b": tile(9, Black), "c": tile(13, Red), "d": tile(3, Black)},
			master:     Black,
			lead:       Red,
			leader:     "c",
			wantWinner: "b",
		},
		{
			name:       "leader wins when nothing matches",
			plays:      map[string]Tile{"a": tile(4, Blue), "b": tile(9, Black)},
			master:     Orange,
			lead:       Red,
			leader:     "a",
			wantWinner: "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, winning := TrickWinner(tt.plays, tt.master, tt.lead, tt.leader)
			assert.Equal(t, tt.wantWinner, winner)
			assert.Equal(t, tt.plays[tt.wantWinner], winning)
		})
	}
}

func TestResolveTrickWinnerLeadsNext(t *testing.T) {
	e := newTestEngine(t, "alice", "bob", "carol")
	rig(t, e, 2, Blue,
		[]Tile{tile(3, Red), tile(8, Black)},
		[]Tile{tile(10, Red), tile(1, Orange)},
		[]Tile{tile(2, Blue), tile(5, Red)},
	)
	bidAll(t, e, 1, 0, 0)

	require.NoError(t, e.PlayTile("alice", tile(3, Red)))
	require.NoError(t, e.PlayTile("bob", tile(10, Red)))
	require.NoError(t, e.PlayTile("carol", tile(5, Red)))

	assert.Equal(t, StateAwaitingPlay, e.State())
	bob, _ := e.Player("bob")
	assert.Equal(t, 1, bob.TricksWon)
	tp, _ := e.CurrentTurnPlayer()
	assert.Equal(t, "bob", tp.Name)
	assert.Empty(t, e.currentTrick)
	assert.Nil(t, e.secondaryColor)
	assert.Equal(t, "bob", e.lastTrickWinner)
}

func TestLastTrickEndsRound(t *testing.T) {
	e := newTestEngine(t, "alice", "bob")
	rig(t, e, 1, Orange, []Tile{tile(4, Black)}, []Tile{tile(2, Orange)})
	bidAll(t, e, 1, 1)

	require.NoError(t, e.PlayTile("alice", tile(4, Black)))
	require.NoError(t, e.PlayTile("bob", tile(2, Orange)))

	assert.Equal(t, StateRoundOver, e.State())
	assert.Equal(t, 1, e.ColorMasterIndex())
	alice, _ := e.Player("alice")
	bob, _ := e.Player("bob")
	assert.Equal(t, -1, alice.Score)
	assert.Equal(t, 11, bob.Score)
	assert.Contains(t, e.events.Entries(), "Round Over.")
}

// internal/game/intent_test.go
package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestApplyStartGameHostOnly(t *testing.T) {
	e := newTestEngine(t, "alice", "bob")

	res := e.Apply(Intent{Action: ActionStartGame, Name: "bob"})
	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrNotHost)
	assert.Equal(t, StateLobby, e.State())

	res = e.Apply(Intent{Action: ActionStartGame, Name: "alice"})
	assert.True(t, res.OK)
	assert.Empty(t, res.Reason)
	assert.Equal(t, StateAwaitingBets, e.State())
}

func TestApplyMalformedIntents(t *testing.T) {
	tests := []struct {
		name string
		in   Intent
	}{
		{"unknown action", Intent{Action: "shuffle", Name: "alice"}},
		{"missing caller", Intent{Action: ActionPlaceBet, Payload: raw(`{"amount":0}`)}},
		{"bet without payload", Intent{Action: ActionPlaceBet, Name: "alice"}},
		{"bet without amount", Intent{Action: ActionPlaceBet, Name: "alice", Payload: raw(`{}`)}},
		{"bet not a number", Intent{Action: ActionPlaceBet, Name: "alice", Payload: raw(`{"amount":"two"}`)}},
		{"tile without payload", Intent{Action: ActionPlayTile, Name: "alice"}},
		{"tile missing color", Intent{Action: ActionPlayTile, Name: "alice", Payload: raw(`{"tile":{"number":3}}`)}},
		{"tile unknown color", Intent{Action: ActionPlayTile, Name: "alice", Payload: raw(`{"tile":{"number":3,"color":"Green"}}`)}},
		{"tile number out of range", Intent{Action: ActionPlayTile, Name: "alice", Payload: raw(`{"tile":{"number":0,"color":"Red"}}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, "alice", "bob")
			require.NoError(t, e.StartNewGame())
			before := e.Snapshot()

			res := e.Apply(tt.in)
			assert.False(t, res.OK)
			assert.ErrorIs(t, res.Err, ErrMalformedIntent)
			assert.NotEmpty(t, res.Reason)
			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestApplyForbiddenBetIsLogged(t *testing.T) {
	e := newTestEngine(t, "alice", "bob")
	require.True(t, e.Apply(Intent{Action: ActionStartGame, Name: "alice"}).OK)
	require.True(t, e.Apply(Intent{Action: ActionPlaceBet, Name: "alice", Payload: raw(`{"amount":0}`)}).OK)

	res := e.Apply(Intent{Action: ActionPlaceBet, Name: "bob", Payload: raw(`{"amount":1}`)})
	require.False(t, res.OK)
	assert.ErrorIs(t, res.Err, ErrForbiddenBet)
	assert.Equal(t, "FORBIDDEN_BET", res.Reason)

	entries := e.events.Entries()
	assert.Equal(t, "🚫 bob tried to bet 1, but it's not allowed.", entries[len(entries)-1])
	assert.Equal(t, StateAwaitingBets, e.State())
}

func TestApplyPlayTile(t *testing.T) {
	e := newTestEngine(t, "alice", "bob")
	rig(t, e, 1, Red, []Tile{tile(7, Blue)}, []Tile{tile(3, Orange)})
	bidAll(t, e, 1, 1)

	res := e.Apply(Intent{Action: ActionPlayTile, Name: "alice", Payload: raw(`{"tile":{"number":7,"color":"Blue"}}`)})
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, map[string]Tile{"alice": tile(7, Blue)}, e.currentTrick)
}

func TestApplyRosterActions(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.Apply(Intent{Action: ActionJoin, Name: "alice"}).OK)
	require.True(t, e.Apply(Intent{Action: ActionSpectate, Name: "sam"}).OK)
	assert.ErrorIs(t, e.Apply(Intent{Action: ActionSpectate, Name: "alice"}).Err, ErrNameTaken)
	assert.ErrorIs(t, e.Apply(Intent{Action: ActionJoin, Name: "alice"}).Err, ErrNameTaken)

	require.True(t, e.Apply(Intent{Action: ActionLeave, Name: "sam"}).OK)
	assert.Empty(t, e.spectators)
	assert.Equal(t, 1, e.PlayerCount())
}

func TestDecodeTile(t *testing.T) {
	got, err := DecodeTile(raw(`{"tile":{"number":13,"color":"Orange"}}`))
	require.NoError(t, err)
	assert.Equal(t, tile(13, Orange), got)
}

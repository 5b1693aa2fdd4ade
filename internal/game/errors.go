// internal/game/errors.go
package game

import "errors"

// Rejections. None of them mutate engine state. Callers match with errors.Is.
var (
	ErrNoPlayer         = errors.New("no player")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start a game")
	ErrRoomFull         = errors.New("room is full")
	ErrNameTaken        = errors.New("name is already taken by an active player")
	ErrBetOutOfRange    = errors.New("bet out of range")
	ErrForbiddenBet     = errors.New("FORBIDDEN_BET")
	ErrTileNotInHand    = errors.New("tile not in hand")
	ErrIllegalTile      = errors.New("invalid move")
	ErrMalformedIntent  = errors.New("malformed intent")
	ErrDeckExhausted    = errors.New("deck exhausted while dealing")
)

// internal/database/match.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dongdong-game/dongdong/internal/game"
)

// ErrNoDatabase is returned by writers when DB has not been connected.
var ErrNoDatabase = errors.New("database not configured")

// RecordMatchResults stores a finished match and one result row per seat in a
// single transaction. It returns the new match id.
func RecordMatchResults(ctx context.Context, roomCode string, standings []game.Standing) (uuid.UUID, error) {
	if DB == nil {
		return uuid.Nil, ErrNoDatabase
	}
	matchID := uuid.New()
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		insertMatch := `
			INSERT INTO matches (id, room_code, player_count)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.Exec(ctx, insertMatch, matchID, roomCode, len(standings)); err != nil {
			return err
		}

		insertResult := `
			INSERT INTO match_results (match_id, seat, player_name, score, rank)
			VALUES ($1, $2, $3, $4, $5)
		`
		batch := &pgx.Batch{}
		for _, s := range standings {
			batch.Queue(insertResult, matchID, s.Seat, s.Name, s.Score, s.Rank)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("tx insert match results: %w", err)
	}
	return matchID, nil
}

// internal/database/schema.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id          UUID PRIMARY KEY,
		room_code   TEXT NOT NULL,
		player_count INT NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS match_results (
		match_id    UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		seat        INT NOT NULL,
		player_name TEXT NOT NULL,
		score       INT NOT NULL,
		rank        INT NOT NULL,
		PRIMARY KEY (match_id, seat)
	)`,
	`CREATE TABLE IF NOT EXISTS room_actions (
		id             UUID PRIMARY KEY,
		room_code      TEXT NOT NULL,
		action_index   INT NOT NULL,
		actor          TEXT NOT NULL,
		action_type    TEXT NOT NULL,
		action_payload JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS room_actions_room_idx ON room_actions (room_code, action_index)`,
}

// EnsureSchema creates the archive tables if they are missing.
func EnsureSchema(ctx context.Context) error {
	if DB == nil {
		return ErrNoDatabase
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

// internal/database/room_actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dongdong-game/dongdong/internal/cache"
)

// ActionWriter persists room action records. The zero value writes to DB.
type ActionWriter struct{}

// InsertRoomActions writes a batch of action records in one transaction.
// Records already stored (same id) are skipped.
func (ActionWriter) InsertRoomActions(ctx context.Context, records []cache.ActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if DB == nil {
		return ErrNoDatabase
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertRoomActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertRoomActionTx: %w", err)
			}
		}
		return nil
	})
}

func insertRoomActionTx(ctx context.Context, tx pgx.Tx, rec cache.ActionRecord) error {
	q := `
		INSERT INTO room_actions (
			id, room_code, action_index, actor, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	payload := rec.ActionPayload
	if payload == nil {
		payload = map[string]any{}
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, q,
		rec.ID, rec.RoomID, rec.ActionIndex, rec.Actor, rec.ActionType, jsonPayload,
		time.UnixMilli(rec.Timestamp).UTC(),
	)
	return err
}

package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/models"
)

// InsertActionsTx writes a batch of action records in one transaction, creating
// the match row for matches the server never persisted up front. Turn and end
// actions also update match_turns and the match status.
func InsertActionsTx(ctx context.Context, batch []cache.MatchActionRecord) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.MatchActionRecord) error {
	upsertMatchQ := `
		INSERT INTO matches (id, status, start_time)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertMatchQ, rec.MatchID, models.MatchInProgress); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO match_actions (match_id, action_index, turn, action_type, action_payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, actionInsertQ, rec.MatchID, rec.ActionIndex, rec.Turn, rec.ActionType, payload); err != nil {
		return err
	}

	switch rec.ActionType {
	case "turn_complete":
		q := `
			INSERT INTO match_turns (match_id, turn_number, record)
			VALUES ($1, $2, $3)
			ON CONFLICT (match_id, turn_number) DO NOTHING
		`
		_, err = tx.Exec(ctx, q, rec.MatchID, rec.Turn, payload)
	case "match_end":
		winner, _ := rec.ActionPayload["winner"].(string)
		reason, _ := rec.ActionPayload["reason"].(string)
		q := `
			UPDATE matches
			SET status = $2, winner = NULLIF($3, ''), reason = $4, end_time = NOW()
			WHERE id = $1 AND status = $5
		`
		_, err = tx.Exec(ctx, q, rec.MatchID, models.MatchCompleted, winner, reason, models.MatchInProgress)
	}
	return err
}

// MarkMatchAbandoned flags a match that is still in progress as abandoned.
func MarkMatchAbandoned(ctx context.Context, matchID uuid.UUID) (bool, error) {
	q := `
		UPDATE matches
		SET status = $2, end_time = NOW()
		WHERE id = $1 AND status = $3
	`
	tag, err := DB.Exec(ctx, q, matchID, models.MatchAbandoned, models.MatchInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

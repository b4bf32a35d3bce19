package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/spellclash/internal/models"
)

// CreateMatch inserts the match row with its settings and initial board.
func CreateMatch(ctx context.Context, rec models.MatchRecord) error {
	q := `
		INSERT INTO matches (id, status, deck_a, deck_b, seed, settings, initial_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	status := rec.Status
	if status == "" {
		status = models.MatchInProgress
	}
	_, err := DB.Exec(ctx, q, rec.ID, status, rec.DeckA, rec.DeckB, rec.Seed, []byte(rec.Settings), nullJSON(rec.InitialState))
	if err != nil {
		return fmt.Errorf("insert match %s: %w", rec.ID, err)
	}
	return nil
}

// RecordTurn stores one archived turn. Re-recording a turn overwrites it.
func RecordTurn(ctx context.Context, matchID uuid.UUID, turn int, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal turn %d: %w", turn, err)
	}
	q := `
		INSERT INTO match_turns (match_id, turn_number, record)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id, turn_number) DO UPDATE SET record = $3
	`
	if _, err := DB.Exec(ctx, q, matchID, turn, data); err != nil {
		return fmt.Errorf("insert turn %d of match %s: %w", turn, matchID, err)
	}
	return nil
}

// FinishMatch marks the match completed with its result and final board.
func FinishMatch(ctx context.Context, matchID uuid.UUID, winner *string, reason string, finalState interface{}) error {
	data, err := json.Marshal(finalState)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE matches
			SET status = $2, winner = $3, reason = $4, final_state = $5, end_time = NOW()
			WHERE id = $1
		`
		_, e := tx.Exec(ctx, q, matchID, models.MatchCompleted, winner, reason, data)
		return e
	})
	if err != nil {
		return fmt.Errorf("tx finish match %s: %w", matchID, err)
	}
	return nil
}

// GetMatch loads a match row.
func GetMatch(ctx context.Context, id uuid.UUID) (*models.MatchRecord, error) {
	var rec models.MatchRecord
	q := `
		SELECT id, status, deck_a, deck_b, seed, settings, initial_state, final_state,
		       winner, reason, start_time, end_time
		FROM matches WHERE id = $1
	`
	var settings, initial, final []byte
	err := DB.QueryRow(ctx, q, id).Scan(
		&rec.ID, &rec.Status, &rec.DeckA, &rec.DeckB, &rec.Seed, &settings, &initial, &final,
		&rec.Winner, &rec.Reason, &rec.StartTime, &rec.EndTime,
	)
	if err != nil {
		return nil, fmt.Errorf("select match %s: %w", id, err)
	}
	rec.Settings, rec.InitialState, rec.FinalState = settings, initial, final
	return &rec, nil
}

// ListTurns returns the archived turns of a match in order.
func ListTurns(ctx context.Context, matchID uuid.UUID) ([]models.TurnRecord, error) {
	q := `SELECT match_id, turn_number, record FROM match_turns WHERE match_id = $1 ORDER BY turn_number`
	rows, err := DB.Query(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TurnRecord
	for rows.Next() {
		var tr models.TurnRecord
		var data []byte
		if err := rows.Scan(&tr.MatchID, &tr.TurnNumber, &data); err != nil {
			return nil, err
		}
		tr.Record = data
		out = append(out, tr)
	}
	return out, rows.Err()
}

func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

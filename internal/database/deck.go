package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/spellclash/internal/models"
)

// ErrDeckNotFound is returned when no deck has the requested ID.
var ErrDeckNotFound = errors.New("deck not found")

// CreateDeck stores a deck list and returns it with its new ID.
func CreateDeck(ctx context.Context, name string, cards []string) (*models.Deck, error) {
	data, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("marshal deck cards: %w", err)
	}
	d := &models.Deck{ID: uuid.New(), Name: name, Cards: cards}
	q := `
		INSERT INTO decks (id, name, cards)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := DB.QueryRow(ctx, q, d.ID, d.Name, data).Scan(&d.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert deck: %w", err)
	}
	return d, nil
}

// GetDeck loads a deck by ID.
func GetDeck(ctx context.Context, id uuid.UUID) (*models.Deck, error) {
	var (
		d    models.Deck
		data []byte
	)
	q := `SELECT id, name, cards, created_at FROM decks WHERE id = $1`
	err := DB.QueryRow(ctx, q, id).Scan(&d.ID, &d.Name, &data, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select deck %s: %w", id, err)
	}
	if err := json.Unmarshal(data, &d.Cards); err != nil {
		return nil, fmt.Errorf("decode deck %s cards: %w", id, err)
	}
	return &d, nil
}

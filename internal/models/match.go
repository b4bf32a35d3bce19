package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Match statuses as stored in the matches table.
const (
	MatchInProgress = "in_progress"
	MatchCompleted  = "completed"
	MatchAbandoned  = "abandoned"
)

// MatchRecord is the persisted row for one match.
type MatchRecord struct {
	ID           uuid.UUID       `json:"id"`
	Status       string          `json:"status"`
	DeckA        *uuid.UUID      `json:"deckA,omitempty"`
	DeckB        *uuid.UUID      `json:"deckB,omitempty"`
	Seed         int64           `json:"seed"`
	Settings     json.RawMessage `json:"settings"`
	InitialState json.RawMessage `json:"initialState,omitempty"`
	FinalState   json.RawMessage `json:"finalState,omitempty"`
	Winner       *string         `json:"winner,omitempty"`
	Reason       *string         `json:"reason,omitempty"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime,omitempty"`
}

// TurnRecord is one archived cycle of a match.
type TurnRecord struct {
	MatchID    uuid.UUID       `json:"matchId"`
	TurnNumber int             `json:"turnNumber"`
	Record     json.RawMessage `json:"record"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a stored deck list. Cards holds catalog IDs, one entry per copy.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Cards     []string  `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
}

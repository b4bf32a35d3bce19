package game

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveSeed(t *testing.T) {
	id := uuid.MustParse("6f1c2a5e-8a4b-4a0e-9b7c-3d2e1f0a9b8c")
	other := uuid.MustParse("0b4e3c1d-2f5a-4b6c-8d7e-9f0a1b2c3d4e")

	assert.Equal(t, DeriveSeed(id, []byte("k")), DeriveSeed(id, []byte("k")))
	assert.NotEqual(t, DeriveSeed(id, []byte("k")), DeriveSeed(other, []byte("k")))
	assert.NotEqual(t, DeriveSeed(id, []byte("k")), DeriveSeed(id, []byte("j")))
	assert.NotEqual(t, DeriveSeed(id, nil), DeriveSeed(id, []byte("k")))

	long := bytes.Repeat([]byte("x"), 100)
	assert.Equal(t, DeriveSeed(id, long), DeriveSeed(id, long), "oversized secrets are folded")
}

func TestSameSecretGivesSameDeckOrder(t *testing.T) {
	id := uuid.New()
	deck := []Card{spell("1", 1), spell("2", 2), spell("3", 3), spell("4", 4), spell("5", 5)}
	m1, err := NewMatch(deck, deck, testSettings(), WithID(id), WithSeedSecret([]byte("s")))
	assert.NoError(t, err)
	m2, err := NewMatch(deck, deck, testSettings(), WithID(id), WithSeedSecret([]byte("s")))
	assert.NoError(t, err)

	assert.Equal(t, keysOf(m1.Board.Player(SideA).DrawPile), keysOf(m2.Board.Player(SideA).DrawPile))
	assert.Equal(t, keysOf(m1.Board.Player(SideB).DrawPile), keysOf(m2.Board.Player(SideB).DrawPile))
}

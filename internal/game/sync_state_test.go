package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactHidesOpponentPrivateZones(t *testing.T) {
	deck := []Card{spell("d1", 1, Red), spell("d2", 2, Green)}
	m, _ := setupTestMatch(t, deck, deck, testSettings())
	place(m, m.Board.Player(SideA).Hand, spell("a-hand", 3, Blue))
	place(m, m.Board.Player(SideB).Hand, spell("b-hand", 4, Blue))
	place(m, m.Board.Player(SideB).CastSlot(Red), spell("b-cast", 5, Red))
	place(m, m.Board.Player(SideB).Stack(Green), spell("b-stack", 6, Green))
	place(m, m.Board.Field, field("arena", Blue))

	st := Redact(m.buildState(), SideA)
	a, b := st.Players[SideA], st.Players[SideB]

	require.Len(t, a.Hand, 1)
	assert.True(t, a.Hand[0].Known)
	assert.Equal(t, "a-hand", a.Hand[0].Name)

	require.Len(t, b.Hand, 1)
	assert.False(t, b.Hand[0].Known)
	assert.Empty(t, b.Hand[0].Name)
	assert.NotZero(t, b.Hand[0].Key, "hidden cards keep their key")

	require.NotNil(t, b.Casting["red"])
	assert.False(t, b.Casting["red"].Known)

	for _, ps := range []PlayerState{a, b} {
		require.Len(t, ps.DrawPile, 2)
		for _, cv := range ps.DrawPile {
			assert.False(t, cv.Known)
		}
	}

	require.Len(t, b.Stacks["green"], 1)
	assert.True(t, b.Stacks["green"][0].Known, "stacks are public")
	require.NotNil(t, b.Stacks["green"][0].Attack)
	assert.Equal(t, 6, *b.Stacks["green"][0].Attack)
	require.Len(t, st.Field, 1)
	assert.Equal(t, "arena", st.Field[0].Name)
}

func TestRedactDoesNotMutateSource(t *testing.T) {
	m, _ := setupTestMatch(t, nil, nil, testSettings())
	place(m, m.Board.Player(SideB).Hand, spell("secret", 1, Red))
	full := m.buildState()

	_ = Redact(full, SideA)
	assert.True(t, full.Players[SideB].Hand[0].Known)
	assert.Equal(t, "secret", full.Players[SideB].Hand[0].Name)
}

func TestSnapshotTracksLastEmittedState(t *testing.T) {
	m, _ := setupTestMatch(t, nil, nil, testSettings())
	m.damagePlayer(SideB, 30)

	assert.Equal(t, 70, m.Snapshot(SideA).Players[SideB].HP)
	assert.Equal(t, 70, m.Snapshot(SideB).Players[SideB].HP)
}

func TestRedactHidesOpponentStackChoice(t *testing.T) {
	m, rec := setupTestMatch(t, nil, nil, testSettings())
	secret := place(m, m.Board.Player(SideA).Hand, spell("Secret Fireball", 9, Red, Blue))

	var seenByB, seenByA *DecisionView
	rec.respond = func(ev GameEvent) {
		if ev.Type != EventDecisionRequest || ev.Decision.Descriptor.Kind != DecisionSelectSpellStack {
			return
		}
		st := m.buildState()
		seenByB = Redact(st, SideB).Players[SideA].Pending
		seenByA = Redact(st, SideA).Players[SideA].Pending
		_ = m.Submit(SideA, DecisionPayload{Colors: []Color{Red}})
	}

	require.NoError(t, m.castCard(context.Background(), SideA, secret.Info().Key))

	require.NotNil(t, seenByB)
	assert.Equal(t, DecisionSelectSpellStack, seenByB.Descriptor.Kind)
	assert.Equal(t, 1, seenByB.Descriptor.Max)
	assert.Empty(t, seenByB.Descriptor.Prompt)
	assert.Empty(t, seenByB.Descriptor.AllowedColors)
	assert.Empty(t, seenByB.Descriptor.Options)

	require.NotNil(t, seenByA)
	assert.Equal(t, []Color{Red, Blue}, seenByA.Descriptor.AllowedColors)
	assert.NotContains(t, seenByA.Descriptor.Prompt, "Secret Fireball")
}

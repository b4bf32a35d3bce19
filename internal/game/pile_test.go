package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyedPile(name string, keys ...int) *Pile {
	p := newPile(name)
	for _, k := range keys {
		p.push(spell("s", 1).withKey(k))
	}
	return p
}

func keysOf(p *Pile) []int {
	var out []int
	for _, c := range p.Cards() {
		out = append(out, c.Info().Key)
	}
	return out
}

func TestMoveTopPreservesIdentity(t *testing.T) {
	from := keyedPile("from", 1, 2, 3)
	to := keyedPile("to", 9)
	top := from.PeekTop()

	moved := MoveTop(from, to)
	require.NotNil(t, moved)
	assert.Same(t, top, moved, "the moved card must be the same instance")
	assert.Same(t, top, to.PeekTop())
	assert.Equal(t, []int{1, 2}, keysOf(from))
	assert.Equal(t, []int{9, 3}, keysOf(to))
}

func TestMoveBottomTakesTopOfSource(t *testing.T) {
	from := keyedPile("from", 1, 2, 3)
	to := keyedPile("to", 8, 9)

	moved := MoveBottom(from, to)
	require.NotNil(t, moved)
	assert.Equal(t, 3, moved.Info().Key)
	assert.Equal(t, []int{3, 8, 9}, keysOf(to))
	assert.Equal(t, []int{1, 2}, keysOf(from))
}

func TestMoveCardByKey(t *testing.T) {
	from := keyedPile("from", 1, 2, 3)
	to := newPile("to")

	assert.Equal(t, 2, MoveCard(from, to, 2).Info().Key)
	assert.Equal(t, []int{1, 3}, keysOf(from))
	assert.Equal(t, []int{2}, keysOf(to))

	assert.Nil(t, MoveCard(from, to, 42), "missing key moves nothing")
	assert.Equal(t, 2, from.Len())
	assert.Equal(t, 1, to.Len())
}

func TestRemoveByKey(t *testing.T) {
	p := keyedPile("p", 1, 2, 3)
	want := p.Find(2)

	got := p.Remove(2)
	assert.Same(t, want, got)
	assert.Equal(t, []int{1, 3}, keysOf(p))
	assert.Nil(t, p.Remove(2), "a missing card is a no-op")
	assert.Equal(t, []int{1, 3}, keysOf(p))
}

func TestMovesOnEmptyPile(t *testing.T) {
	from, to := newPile("from"), keyedPile("to", 1)
	assert.Nil(t, MoveTop(from, to))
	assert.Nil(t, MoveBottom(from, to))
	assert.Nil(t, from.PeekTop())
	assert.Equal(t, 1, to.Len())
}

func TestPileMovesConserveCards(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	piles := []*Pile{keyedPile("p0", 1, 2, 3, 4), keyedPile("p1", 5, 6), newPile("p2")}
	total := func() map[int]int {
		seen := map[int]int{}
		for _, p := range piles {
			for _, k := range keysOf(p) {
				seen[k]++
			}
		}
		return seen
	}

	for i := 0; i < 200; i++ {
		from, to := piles[rng.Intn(3)], piles[rng.Intn(3)]
		switch rng.Intn(3) {
		case 0:
			MoveTop(from, to)
		case 1:
			MoveBottom(from, to)
		case 2:
			if top := from.PeekTop(); top != nil {
				MoveCard(from, to, top.Info().Key)
			}
		}
		seen := total()
		require.Len(t, seen, 6)
		for k, n := range seen {
			require.Equal(t, 1, n, "card %d must be in exactly one pile", k)
		}
	}
}

func TestCardsReturnsCopy(t *testing.T) {
	p := keyedPile("p", 1, 2)
	cards := p.Cards()
	cards[0] = nil
	assert.Equal(t, []int{1, 2}, keysOf(p))
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	a := keyedPile("a", 1, 2, 3, 4, 5, 6, 7, 8)
	b := keyedPile("b", 1, 2, 3, 4, 5, 6, 7, 8)
	a.Shuffle(rand.New(rand.NewSource(42)))
	b.Shuffle(rand.New(rand.NewSource(42)))
	assert.Equal(t, keysOf(a), keysOf(b))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, keysOf(a))
}

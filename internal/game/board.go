// internal/game/board.go
package game

import "fmt"

// MaxHP is the healing ceiling. Damage has no floor.
const MaxHP = 100

// PlayerBoard is one side of the board.
type PlayerBoard struct {
	Side     Side
	HP       int
	Hand     *Pile
	DrawPile *Pile
	stacks   [3]*Pile
	casting  [4]*Pile // indexed by Color; ColorNone is the field slot
}

func newPlayerBoard(side Side) *PlayerBoard {
	p := &PlayerBoard{
		Side:     side,
		HP:       MaxHP,
		Hand:     newPile(side.String() + ".hand"),
		DrawPile: newPile(side.String() + ".draw"),
	}
	for _, c := range StackColors {
		p.stacks[c-1] = newPile(fmt.Sprintf("%s.stack.%s", side, c))
	}
	p.casting[ColorNone] = newPile(side.String() + ".casting.field")
	for _, c := range StackColors {
		p.casting[c] = newPile(fmt.Sprintf("%s.casting.%s", side, c))
	}
	return p
}

// Stack returns the spell stack for a color.
func (p *PlayerBoard) Stack(c Color) *Pile {
	if c == ColorNone {
		return nil
	}
	return p.stacks[c-1]
}

// CastSlot returns the staging slot for a color; ColorNone is the field slot.
func (p *PlayerBoard) CastSlot(c Color) *Pile {
	return p.casting[c]
}

// Board holds all match state that cards can occupy.
type Board struct {
	Players     [2]*PlayerBoard
	Field       *Pile
	DiscardPile *Pile
}

// NewBoard creates an empty board with both sides at full hp.
func NewBoard() *Board {
	return &Board{
		Players:     [2]*PlayerBoard{newPlayerBoard(SideA), newPlayerBoard(SideB)},
		Field:       newPile("field"),
		DiscardPile: newPile("discard"),
	}
}

// Player returns the board for side s.
func (b *Board) Player(s Side) *PlayerBoard { return b.Players[s] }

// Containers lists every pile on the board in lookup order: per side hand, draw
// pile, stacks, casting slots; then field and discard.
func (b *Board) Containers() []*Pile {
	out := make([]*Pile, 0, 2*9+2)
	for _, side := range Sides {
		p := b.Player(side)
		out = append(out, p.Hand, p.DrawPile)
		out = append(out, p.stacks[:]...)
		out = append(out, p.casting[:]...)
	}
	return append(out, b.Field, b.DiscardPile)
}

// Locate finds the pile currently holding the card with key.
func (b *Board) Locate(key int) *Pile {
	for _, pile := range b.Containers() {
		if pile.Find(key) != nil {
			return pile
		}
	}
	return nil
}

// BoardView is a read-only window onto the board handed to card code.
type BoardView struct {
	b *Board
}

// View wraps the board in a read-only view.
func (b *Board) View() BoardView { return BoardView{b: b} }

// HP returns a side's current hp.
func (v BoardView) HP(s Side) int { return v.b.Player(s).HP }

// Hand returns a copy of a side's hand.
func (v BoardView) Hand(s Side) []Card { return v.b.Player(s).Hand.Cards() }

// DrawPileSize returns the number of cards left to draw.
func (v BoardView) DrawPileSize(s Side) int { return v.b.Player(s).DrawPile.Len() }

// Stack returns a copy of a side's stack, bottom first.
func (v BoardView) Stack(s Side, c Color) []*SpellCard {
	pile := v.b.Player(s).Stack(c)
	if pile == nil {
		return nil
	}
	out := make([]*SpellCard, 0, pile.Len())
	for _, card := range pile.Cards() {
		if sc, ok := card.(*SpellCard); ok {
			out = append(out, sc)
		}
	}
	return out
}

// StackTop returns the top spell of a stack, or nil.
func (v BoardView) StackTop(s Side, c Color) *SpellCard {
	pile := v.b.Player(s).Stack(c)
	if pile == nil {
		return nil
	}
	sc, _ := pile.PeekTop().(*SpellCard)
	return sc
}

// ActiveField returns the field card currently in effect, or nil.
func (v BoardView) ActiveField() *FieldCard {
	fc, _ := v.b.Field.PeekTop().(*FieldCard)
	return fc
}

// DiscardSize returns the size of the global discard pile.
func (v BoardView) DiscardSize() int { return v.b.DiscardPile.Len() }

// Find returns the card with key wherever it is, plus the name of its pile.
func (v BoardView) Find(key int) (Card, string) {
	pile := v.b.Locate(key)
	if pile == nil {
		return nil, ""
	}
	return pile.Find(key), pile.Name()
}

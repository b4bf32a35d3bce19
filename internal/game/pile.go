// internal/game/pile.go
package game

import "math/rand"

// Pile is an ordered card sequence. The last element is the top.
// Piles are only changed through the functions in this file.
type Pile struct {
	name  string
	cards []Card
}

func newPile(name string) *Pile {
	return &Pile{name: name, cards: []Card{}}
}

// Name identifies the container in logs, e.g. "a.hand" or "field".
func (p *Pile) Name() string { return p.name }

// Len returns the number of cards in the pile.
func (p *Pile) Len() int { return len(p.cards) }

// Cards returns a copy of the pile, bottom first.
func (p *Pile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// PeekTop returns the top card without removing it, or nil if empty.
func (p *Pile) PeekTop() Card {
	if len(p.cards) == 0 {
		return nil
	}
	return p.cards[len(p.cards)-1]
}

// Find returns the card with the given key, or nil.
func (p *Pile) Find(key int) Card {
	if i := p.indexOf(key); i >= 0 {
		return p.cards[i]
	}
	return nil
}

func (p *Pile) indexOf(key int) int {
	for i, c := range p.cards {
		if c.Info().Key == key {
			return i
		}
	}
	return -1
}

// Shuffle randomizes the order of the pile.
func (p *Pile) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(p.cards), func(i, j int) {
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	})
}

// Remove takes the card with the given key out of the pile and returns it, or
// nil if the card is not there. The card is then off the board until the caller
// pushes it somewhere; prefer MoveCard inside a match.
func (p *Pile) Remove(key int) Card {
	i := p.indexOf(key)
	if i < 0 {
		return nil
	}
	c := p.cards[i]
	p.cards = append(p.cards[:i], p.cards[i+1:]...)
	return c
}

func (p *Pile) popTop() Card {
	if len(p.cards) == 0 {
		return nil
	}
	c := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return c
}

func (p *Pile) push(c Card) { p.cards = append(p.cards, c) }

func (p *Pile) pushBottom(c Card) {
	p.cards = append([]Card{c}, p.cards...)
}

// MoveTop pops the top of from and places it on top of to. Returns the moved
// card, or nil if from was empty.
func MoveTop(from, to *Pile) Card {
	c := from.popTop()
	if c != nil {
		to.push(c)
	}
	return c
}

// MoveBottom pops the top of from and places it at the bottom of to.
func MoveBottom(from, to *Pile) Card {
	c := from.popTop()
	if c != nil {
		to.pushBottom(c)
	}
	return c
}

// MoveCard removes a specific card from one pile and places it on top of another.
func MoveCard(from, to *Pile, key int) Card {
	c := from.Remove(key)
	if c != nil {
		to.push(c)
	}
	return c
}

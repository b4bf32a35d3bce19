// Package catalog holds the built-in card definitions that decks refer to by ID.
package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/jason-s-yu/spellclash/internal/game"
)

// discardTimeout bounds the opponent's discard choice from Mind Rot.
const discardTimeout = 10 * time.Second

var registry = map[string]game.Card{}

func register(c game.Card) {
	id := c.Info().ID
	if _, dup := registry[id]; dup {
		panic("catalog: duplicate card id " + id)
	}
	registry[id] = c
}

// Lookup returns the template for a card ID. Templates are shared; NewMatch
// copies them.
func Lookup(id string) (game.Card, bool) {
	c, ok := registry[id]
	return c, ok
}

// IDs lists every registered card ID in sorted order.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// BuildDeck resolves a deck list into card templates.
func BuildDeck(ids []string) ([]game.Card, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("deck is empty")
	}
	deck := make([]game.Card, 0, len(ids))
	for i, id := range ids {
		c, ok := Lookup(id)
		if !ok {
			return nil, fmt.Errorf("deck entry %d: unknown card %q", i, id)
		}
		deck = append(deck, c)
	}
	return deck, nil
}

// StarterDeck is the default deck list for matches created without one.
func StarterDeck() []string {
	return []string{
		"spark", "spark",
		"ember_bolt", "ember_bolt", "overcharge",
		"vine_whip", "vine_whip", "insight",
		"tide_surge", "tide_surge", "mind_rot",
		"twin_flame",
		"scorched_earth", "verdant_grove", "still_waters", "calm",
	}
}

func init() {
	for _, c := range spells() {
		register(c)
	}
	for _, c := range fields() {
		register(c)
	}
}

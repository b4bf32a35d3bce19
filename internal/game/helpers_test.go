package game

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects events instead of sending them over WS. respond, when set,
// runs for every event on the match goroutine.
type recorder struct {
	mu      sync.Mutex
	events  []GameEvent
	respond func(ev GameEvent)
}

func (r *recorder) broadcastFn(ev GameEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	respond := r.respond
	r.mu.Unlock()
	if respond != nil {
		respond(ev)
	}
}

func (r *recorder) ofType(t GameEventType) []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []GameEvent
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) all() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameEvent(nil), r.events...)
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func testSettings() Settings {
	s := DefaultSettings()
	s.PhaseDelayMs = 0
	s.CastTimeoutMs = 200
	s.SpellTimeoutMs = 200
	s.MaxTurns = 1
	return s
}

// setupTestMatch builds a match with a fixed seed and a recording broadcaster.
// A turn is opened so primitives can be driven directly.
func setupTestMatch(t *testing.T, deckA, deckB []Card, settings Settings) (*Match, *recorder) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	m, err := NewMatch(deckA, deckB, settings, WithSeed(7), WithLogger(logger))
	require.NoError(t, err)
	rec := &recorder{}
	m.BroadcastFn = rec.broadcastFn
	m.Turn = newTurn(1, nil)
	return m, rec
}

func spell(name string, attack int, colors ...Color) *SpellCard {
	return &SpellCard{
		CardInfo: CardInfo{ID: name, Name: name},
		Colors:   colors,
		Attack:   Literal(attack),
	}
}

func field(name string, color Color) *FieldCard {
	return &FieldCard{CardInfo: CardInfo{ID: name, Name: name}, Color: color}
}

// place puts a keyed copy of card on top of pile and returns it.
func place(m *Match, pile *Pile, card Card) Card {
	key := 1000 + m.Board.totalCards()
	c := card.withKey(key)
	pile.push(c)
	return c
}

func (b *Board) totalCards() int {
	n := 0
	for _, p := range b.Containers() {
		n += p.Len()
	}
	return n
}

// autoRespond answers every decision request immediately: the first hand
// option for hand selections and the side's color for stack selections.
func autoRespond(m *Match, colors [2]Color) func(GameEvent) {
	return func(ev GameEvent) {
		if ev.Type != EventDecisionRequest {
			return
		}
		d := ev.Decision
		switch d.Descriptor.Kind {
		case DecisionSelectFromHand:
			if len(d.Descriptor.Options) > 0 {
				_ = m.Submit(d.Side, DecisionPayload{Cards: []int{d.Descriptor.Options[0].Key}})
			}
		case DecisionSelectSpellStack:
			pick := colors[d.Side]
			if !d.Descriptor.colorAllowed(pick) {
				pick = d.Descriptor.AllowedColors[0]
			}
			_ = m.Submit(d.Side, DecisionPayload{Colors: []Color{pick}})
		}
	}
}

func runMatch(t *testing.T, m *Match) {
	t.Helper()
	m.Turn = nil
	require.NoError(t, m.Run(context.Background()))
}

// internal/game/hooks.go
package game

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type hookTarget struct {
	card  Card
	pile  *Pile
	owner *Side
}

// hookTargets captures, at the start of a pass, the active field card followed by
// the top of each stack in the order a-red, b-red, a-green, b-green, a-blue, b-blue.
func (m *Match) hookTargets() []hookTarget {
	targets := make([]hookTarget, 0, 7)
	if top := m.Board.Field.PeekTop(); top != nil {
		targets = append(targets, hookTarget{card: top, pile: m.Board.Field})
	}
	for _, color := range StackColors {
		for _, side := range Sides {
			pile := m.Board.Player(side).Stack(color)
			if top := pile.PeekTop(); top != nil {
				targets = append(targets, hookTarget{card: top, pile: pile, owner: sidePtr(side)})
			}
		}
	}
	return targets
}

// runHooks runs one hook pass. subject is the side that triggered the pass, if
// any (the drawing side for onDraw).
func (m *Match) runHooks(ctx context.Context, hook Hook, subject *Side) error {
	for _, t := range m.hookTargets() {
		if !sameCard(t.pile.PeekTop(), t.card) {
			m.log.WithFields(logrus.Fields{
				"hook": hook,
				"card": t.card.Info().Key,
				"pile": t.pile.Name(),
			}).Debug("card left its pile during the pass; skipping")
			continue
		}
		if err := m.invoke(ctx, t.card, hook, t.owner, subject); err != nil {
			return err
		}
	}
	return nil
}

// invoke runs one card's handler for hook, marking the card as currently
// affecting for the duration. Field cards get no owner.
func (m *Match) invoke(ctx context.Context, card Card, hook Hook, owner, subject *Side) error {
	eff := card.Hooks()[hook]
	if eff == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	key := card.Info().Key
	m.affecting = append(m.affecting, key)
	m.emitCue(Cue{CardKey: key, Active: true})
	m.emitSnapshot()
	defer func() {
		for i := len(m.affecting) - 1; i >= 0; i-- {
			if m.affecting[i] == key {
				m.affecting = append(m.affecting[:i], m.affecting[i+1:]...)
				break
			}
		}
		m.emitCue(Cue{CardKey: key, Active: false})
		m.emitSnapshot()
	}()

	ectx := &EffectContext{
		ctx:     ctx,
		m:       m,
		card:    card,
		hook:    hook,
		owner:   owner,
		subject: subject,
	}
	if err := eff(ectx); err != nil {
		return fmt.Errorf("%s effect of %q (card %d): %w", hook, card.Info().Name, key, err)
	}
	return nil
}

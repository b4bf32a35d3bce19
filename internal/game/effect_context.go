// internal/game/effect_context.go
package game

import (
	"context"
	"time"
)

// EffectContext is the only handle card effects get on the match. Reads go
// through a BoardView; every change goes through an action primitive so it is
// logged, snapshotted and broadcast.
type EffectContext struct {
	ctx     context.Context
	m       *Match
	card    Card
	hook    Hook
	owner   *Side
	subject *Side
}

// Context returns the match context; it is cancelled when the match stops.
func (c *EffectContext) Context() context.Context { return c.ctx }

// Card is the card whose effect is running.
func (c *EffectContext) Card() Card { return c.card }

// Hook is the trigger being handled.
func (c *EffectContext) Hook() Hook { return c.hook }

// Owner returns the owning side. Field effects have none.
func (c *EffectContext) Owner() (Side, bool) {
	if c.owner == nil {
		return SideA, false
	}
	return *c.owner, true
}

// Opponent returns the side opposing the owner. Field effects have none.
func (c *EffectContext) Opponent() (Side, bool) {
	if c.owner == nil {
		return SideA, false
	}
	return c.owner.Opponent(), true
}

// Subject returns the side that triggered the pass, e.g. the drawing side.
func (c *EffectContext) Subject() (Side, bool) {
	if c.subject == nil {
		return SideA, false
	}
	return *c.subject, true
}

// Board returns a read-only view of the board.
func (c *EffectContext) Board() BoardView { return c.m.Board.View() }

// TurnNumber returns the current cycle number, starting at 1.
func (c *EffectContext) TurnNumber() int { return c.m.Turn.Number }

// Attack returns what side attacked with this turn, if chosen yet.
func (c *EffectContext) Attack(side Side) Attack { return c.m.Turn.Attacks[side] }

// ExtraDamage returns side's accumulated bonus for this turn.
func (c *EffectContext) ExtraDamage(side Side) int { return c.m.Turn.ExtraDamage[side] }

// CombatStack returns the pending combat items. Adjust them with
// IncreaseCombatDamage and DecreaseCombatDamage.
func (c *EffectContext) CombatStack() []*CombatStackItem {
	return append([]*CombatStackItem(nil), c.m.Turn.CombatStack...)
}

// Discard moves card to the discard pile. Returns false if it could not be found.
func (c *EffectContext) Discard(card Card) bool { return c.m.discard(card) }

// HealPlayer heals side, clamped at MaxHP.
func (c *EffectContext) HealPlayer(side Side, amount int) { c.m.healPlayer(side, amount) }

// DamagePlayer damages side. hp may go negative.
func (c *EffectContext) DamagePlayer(side Side, amount int) { c.m.damagePlayer(side, amount) }

// AddExtraDamage adds to side's damage bonus for this turn's combat.
func (c *EffectContext) AddExtraDamage(side Side, amount int) { c.m.addExtraDamage(side, amount) }

// IncreaseCombatDamage raises a pending combat value.
func (c *EffectContext) IncreaseCombatDamage(item *CombatStackItem, amount int) {
	c.m.increaseCombatDamage(item, amount)
}

// DecreaseCombatDamage lowers a pending combat value; see Match.decreaseCombatDamage.
func (c *EffectContext) DecreaseCombatDamage(item *CombatStackItem, amount int) {
	c.m.decreaseCombatDamage(item, amount)
}

// RedirectCombat points a pending combat item at another side.
func (c *EffectContext) RedirectCombat(item *CombatStackItem, target Side) {
	c.m.redirectCombat(item, target)
}

// Draw draws one card for each side in order, running onDraw after each.
func (c *EffectContext) Draw(sides ...Side) error { return c.m.draw(c.ctx, sides...) }

// RequestDecision asks sides to decide and blocks until all have resolved.
// Hand options are filled from the scoped hand when left empty.
func (c *EffectContext) RequestDecision(
	sides []Side,
	desc DecisionDescriptor,
	timeout time.Duration,
	onTimeout func(side Side) DecisionPayload,
) (map[Side]DecisionResult, error) {
	reqs := make([]DecisionRequest, 0, len(sides))
	for _, side := range sides {
		reqs = append(reqs, DecisionRequest{Side: side, Descriptor: c.m.withOptions(side, desc)})
	}
	results, err := c.m.requestDecision(c.ctx, reqs, timeout, onTimeout, nil)
	out := make(map[Side]DecisionResult, len(results))
	for _, r := range results {
		out[r.Side] = r
	}
	return out, err
}

// Log emits a templated log entry.
func (c *EffectContext) Log(template string, players []Side, cards []int) {
	c.m.emitLog(LogEntry{Template: template, Players: players, Cards: cards})
}

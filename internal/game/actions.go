// internal/game/actions.go
package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// discard moves card from wherever it is to the global discard pile. A card that
// is no longer on the board (or already discarded) is logged and skipped.
func (m *Match) discard(card Card) bool {
	if card == nil {
		return false
	}
	key := card.Info().Key
	pile := m.Board.Locate(key)
	if pile == nil || pile == m.Board.DiscardPile {
		m.log.WithField("card", key).Warn("discard target not found on the board; skipping")
		return false
	}
	MoveCard(pile, m.Board.DiscardPile, key)
	m.emitLog(LogEntry{Template: "{card:0} is discarded", Cards: []int{key}})
	m.emitSnapshot()
	m.logAction("card_discard", map[string]interface{}{"card": key, "from": pile.Name()})
	return true
}

// healPlayer raises hp, clamped at MaxHP. A heal that changes nothing emits nothing.
func (m *Match) healPlayer(side Side, amount int) int {
	p := m.Board.Player(side)
	next := p.HP + amount
	if next > MaxHP {
		next = MaxHP
	}
	delta := next - p.HP
	if amount <= 0 || delta <= 0 {
		return 0
	}
	p.HP = next
	m.emitLog(LogEntry{Template: "{player:0} heals {amount}", Players: []Side{side}, Values: map[string]int{"amount": delta}})
	m.emitCue(Cue{Player: sidePtr(side), Active: true})
	m.emitSnapshot()
	m.logAction("player_heal", map[string]interface{}{"side": side.String(), "amount": delta, "hp": p.HP})
	return delta
}

// damagePlayer lowers hp. There is no floor.
func (m *Match) damagePlayer(side Side, amount int) int {
	if amount <= 0 {
		return 0
	}
	p := m.Board.Player(side)
	p.HP -= amount
	m.emitLog(LogEntry{Template: "{player:0} takes {amount} damage", Players: []Side{side}, Values: map[string]int{"amount": amount}})
	m.emitCue(Cue{Player: sidePtr(side), Active: true})
	m.emitSnapshot()
	m.logAction("player_damage", map[string]interface{}{"side": side.String(), "amount": amount, "hp": p.HP})
	return amount
}

func (m *Match) addExtraDamage(side Side, amount int) {
	if amount == 0 {
		return
	}
	m.Turn.ExtraDamage[side] += amount
	m.emitLog(LogEntry{Template: "{player:0} gains {amount} extra damage", Players: []Side{side}, Values: map[string]int{"amount": amount}})
}

func (m *Match) increaseCombatDamage(item *CombatStackItem, amount int) {
	if item == nil {
		return
	}
	item.Value += amount
	m.emitLog(LogEntry{Template: "combat value against {player:0} rises to {value}", Players: []Side{item.Target}, Values: map[string]int{"value": item.Value}})
}

// decreaseCombatDamage sets the item's value to max(0, amount - value). The
// floor applies to the amount, not to the running total.
func (m *Match) decreaseCombatDamage(item *CombatStackItem, amount int) {
	if item == nil {
		return
	}
	next := amount - item.Value
	if next < 0 {
		next = 0
	}
	item.Value = next
	m.emitLog(LogEntry{Template: "combat value against {player:0} drops to {value}", Players: []Side{item.Target}, Values: map[string]int{"value": item.Value}})
}

func (m *Match) redirectCombat(item *CombatStackItem, target Side) {
	if item == nil || item.Target == target {
		return
	}
	item.Target = target
	m.emitLog(LogEntry{Template: "combat value is redirected to {player:0}", Players: []Side{target}})
}

// draw moves the top of each side's draw pile into its hand, running the onDraw
// pass for that side before drawing for the next one.
func (m *Match) draw(ctx context.Context, sides ...Side) error {
	for _, side := range sides {
		p := m.Board.Player(side)
		card := MoveTop(p.DrawPile, p.Hand)
		if card == nil {
			m.log.WithField("side", side).Debug("draw pile empty; nothing drawn")
			continue
		}
		key := card.Info().Key
		m.Turn.Drawn[side] = append(m.Turn.Drawn[side], card)
		m.emitLog(LogEntry{Template: "{player:0} draws {card:0}", Players: []Side{side}, Cards: []int{key}})
		m.emitSnapshot()
		m.logAction("player_draw", map[string]interface{}{"side": side.String(), "card": key})
		if err := m.runHooks(ctx, HookOnDraw, sidePtr(side)); err != nil {
			return err
		}
	}
	return nil
}

// withOptions fills hand options for a select_from_hand descriptor aimed at side.
func (m *Match) withOptions(side Side, desc DecisionDescriptor) DecisionDescriptor {
	if desc.Kind != DecisionSelectFromHand || len(desc.Options) > 0 {
		return desc
	}
	owner := side
	if desc.Scope == ScopeOpponent {
		owner = side.Opponent()
	}
	for _, c := range m.Board.Player(owner).Hand.Cards() {
		if !desc.kindAllowed(c.Kind()) {
			continue
		}
		opt := DecisionOption{Key: c.Info().Key, Kind: c.Kind()}
		if sc, ok := c.(*SpellCard); ok {
			opt.Colors = append([]Color(nil), sc.Colors...)
		}
		desc.Options = append(desc.Options, opt)
	}
	return desc
}

// requestDecision hands the requests to the arbiter and waits for all of them.
func (m *Match) requestDecision(
	ctx context.Context,
	reqs []DecisionRequest,
	timeout time.Duration,
	onTimeout func(side Side) DecisionPayload,
	onResolve func(res DecisionResult) error,
) ([]DecisionResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	for _, r := range reqs {
		m.log.WithFields(logrus.Fields{"side": r.Side, "kind": r.Descriptor.Kind}).Debug("requesting decision")
	}
	return m.arbiter.Request(ctx, reqs, timeout, onTimeout, onResolve)
}

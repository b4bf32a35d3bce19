// internal/game/phases.go
package game

import (
	"context"

	"github.com/sirupsen/logrus"
)

func (m *Match) drawPhase(ctx context.Context) error {
	m.setPhase(PhaseDraw)
	if m.Turn.Number == 1 {
		for i := 0; i < m.Settings.StartingHandSize; i++ {
			if err := m.draw(ctx, SideA, SideB); err != nil {
				return err
			}
		}
	}
	if err := m.runHooks(ctx, HookBeforeDraw, nil); err != nil {
		return err
	}
	if err := m.draw(ctx, SideA, SideB); err != nil {
		return err
	}
	return m.pause(ctx)
}

func (m *Match) castPhase(ctx context.Context) error {
	m.setPhase(PhaseCast)
	if err := m.runHooks(ctx, HookBeforeCast, nil); err != nil {
		return err
	}

	desc := DecisionDescriptor{
		Kind:   DecisionSelectFromHand,
		Prompt: "Choose a card to cast",
		Min:    1,
		Max:    1,
		Scope:  ScopeSelf,
	}
	var reqs []DecisionRequest
	for _, side := range Sides {
		if m.Board.Player(side).Hand.Len() == 0 {
			m.log.WithField("side", side).Debug("empty hand; no cast this turn")
			continue
		}
		reqs = append(reqs, DecisionRequest{Side: side, Descriptor: m.withOptions(side, desc)})
	}

	_, err := m.requestDecision(ctx, reqs, m.Settings.castTimeout(), m.randomHandCard, func(res DecisionResult) error {
		if len(res.Payload.Cards) == 0 {
			return nil
		}
		return m.castCard(ctx, res.Side, res.Payload.Cards[0])
	})
	if err != nil {
		return err
	}
	return m.pause(ctx)
}

// randomHandCard picks the cast for a side that ran out of time.
func (m *Match) randomHandCard(side Side) DecisionPayload {
	hand := m.Board.Player(side).Hand.Cards()
	if len(hand) == 0 {
		return DecisionPayload{}
	}
	return DecisionPayload{Cards: []int{hand[m.rng.Intn(len(hand))].Info().Key}}
}

// castCard stages a card from side's hand into its casting area. Spells with no
// color or several colors ask which stack to stage onto.
func (m *Match) castCard(ctx context.Context, side Side, key int) error {
	p := m.Board.Player(side)
	card := p.Hand.Find(key)
	if card == nil {
		m.log.WithFields(logrus.Fields{"side": side, "card": key}).Warn("cast card is no longer in hand; skipping")
		return nil
	}

	slot := ColorNone
	switch c := card.(type) {
	case *FieldCard:
		slot = ColorNone
	case *SpellCard:
		eligible := c.CastColors()
		if len(c.Colors) == 1 {
			slot = c.Colors[0]
		} else {
			chosen, err := m.chooseStack(ctx, side, eligible)
			if err != nil {
				return err
			}
			slot = chosen
		}
	default:
		return unreachable(PhaseCast, "card %d has unknown kind", key)
	}

	if MoveCard(p.Hand, p.CastSlot(slot), key) == nil {
		m.log.WithFields(logrus.Fields{"side": side, "card": key}).Warn("cast card left the hand before staging; skipping")
		return nil
	}
	m.Turn.Cast[side][slot] = card
	m.emitLog(LogEntry{Template: "{player:0} casts a card", Players: []Side{side}})
	m.emitSnapshot()
	m.logAction("player_cast", map[string]interface{}{"side": side.String(), "card": key, "slot": slot.String()})
	return nil
}

// chooseStack asks one side to pick exactly one of the eligible stacks.
func (m *Match) chooseStack(ctx context.Context, side Side, eligible []Color) (Color, error) {
	desc := DecisionDescriptor{
		Kind:          DecisionSelectSpellStack,
		Prompt:        "Choose a stack for your cast",
		Min:           1,
		Max:           1,
		Scope:         ScopeSelf,
		AllowedColors: eligible,
	}
	first := func(Side) DecisionPayload { return DecisionPayload{Colors: []Color{eligible[0]}} }
	results, err := m.requestDecision(ctx, []DecisionRequest{{Side: side, Descriptor: desc}}, m.Settings.castTimeout(), first, nil)
	if err != nil {
		return ColorNone, err
	}
	if len(results) == 0 || len(results[0].Payload.Colors) == 0 {
		return eligible[0], nil
	}
	return results[0].Payload.Colors[0], nil
}

func (m *Match) revealPhase(ctx context.Context) error {
	m.setPhase(PhaseReveal)
	if err := m.runHooks(ctx, HookBeforeReveal, nil); err != nil {
		return err
	}

	for _, side := range Sides {
		p := m.Board.Player(side)
		for _, color := range StackColors {
			slot := p.CastSlot(color)
			card := slot.PeekTop()
			if card == nil {
				continue
			}
			if err := m.invoke(ctx, card, HookOnReveal, sidePtr(side), nil); err != nil {
				return err
			}
			moved := MoveCard(slot, p.Stack(color), card.Info().Key)
			if moved == nil {
				m.log.WithFields(logrus.Fields{"side": side, "card": card.Info().Key}).Warn("revealed card left its casting slot; skipping")
				continue
			}
			m.emitLog(LogEntry{Template: "{player:0} reveals {card:0} on {color}", Players: []Side{side}, Cards: []int{moved.Info().Key}, Values: map[string]int{"color": int(color)}})
			m.emitSnapshot()
			m.logAction("card_reveal", map[string]interface{}{"side": side.String(), "card": moved.Info().Key, "color": color.String()})
			if err := m.pause(ctx); err != nil {
				return err
			}
		}
	}

	for _, side := range Sides {
		if card := m.Board.Player(side).CastSlot(ColorNone).PeekTop(); card != nil {
			if err := m.invoke(ctx, card, HookOnReveal, nil, nil); err != nil {
				return err
			}
		}
	}
	return m.fieldClash(ctx)
}

// fieldClash settles the field cards staged this turn. A lone card wins
// unopposed; colored beats neutral; otherwise the color cycle decides. When
// neither wins, both staged field cards are discarded.
func (m *Match) fieldClash(ctx context.Context) error {
	var staged [2]*FieldCard
	for _, side := range Sides {
		top := m.Board.Player(side).CastSlot(ColorNone).PeekTop()
		if top == nil {
			continue
		}
		fc, ok := top.(*FieldCard)
		if !ok {
			return unreachable(PhaseFieldClash, "side %s staged non-field card %d in the field slot", side, top.Info().Key)
		}
		staged[side] = fc
	}

	a, b := staged[SideA], staged[SideB]
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return m.settleFieldClash(ctx, SideB, nil)
	case b == nil:
		return m.settleFieldClash(ctx, SideA, nil)
	}

	m.setPhase(PhaseFieldClash)
	ca, cb := a.Color, b.Color
	switch {
	case ca == cb:
		m.emitLog(LogEntry{Template: "{card:0} and {card:1} cancel out", Cards: []int{a.Key, b.Key}})
		m.discard(a)
		m.discard(b)
		return nil
	case cb == ColorNone || ca.Beats(cb):
		return m.settleFieldClash(ctx, SideA, b)
	case ca == ColorNone || cb.Beats(ca):
		return m.settleFieldClash(ctx, SideB, a)
	}
	return unreachable(PhaseFieldClash, "field colors %s and %s have no winner", ca, cb)
}

func (m *Match) settleFieldClash(ctx context.Context, winner Side, loser *FieldCard) error {
	slot := m.Board.Player(winner).CastSlot(ColorNone)
	card := slot.PeekTop()
	if card == nil {
		return nil
	}
	MoveCard(slot, m.Board.Field, card.Info().Key)
	m.emitLog(LogEntry{Template: "{player:0} takes the field with {card:0}", Players: []Side{winner}, Cards: []int{card.Info().Key}})
	m.emitSnapshot()
	m.logAction("field_clash", map[string]interface{}{"winner": winner.String(), "card": card.Info().Key})
	if err := m.invoke(ctx, card, HookOnClashWin, nil, nil); err != nil {
		return err
	}
	if loser != nil {
		m.discard(loser)
		if err := m.invoke(ctx, loser, HookOnClashLose, nil, nil); err != nil {
			return err
		}
	}
	return m.pause(ctx)
}

func (m *Match) spellSelectPhase(ctx context.Context) error {
	m.setPhase(PhaseSpellSelect)
	if err := m.runHooks(ctx, HookBeforeSpell, nil); err != nil {
		return err
	}

	desc := DecisionDescriptor{
		Kind:          DecisionSelectSpellStack,
		Prompt:        "Choose a stack to attack with",
		Min:           1,
		Max:           1,
		Scope:         ScopeSelf,
		AllowedColors: StackColors[:],
	}
	reqs := []DecisionRequest{{Side: SideA, Descriptor: desc}, {Side: SideB, Descriptor: desc}}
	randomColor := func(Side) DecisionPayload {
		return DecisionPayload{Colors: []Color{StackColors[m.rng.Intn(len(StackColors))]}}
	}
	_, err := m.requestDecision(ctx, reqs, m.Settings.spellTimeout(), randomColor, func(res DecisionResult) error {
		color := StackColors[0]
		if len(res.Payload.Colors) > 0 {
			color = res.Payload.Colors[0]
		}
		m.Turn.Attacks[res.Side] = Attack{
			Chosen: true,
			Color:  color,
			Card:   m.Board.View().StackTop(res.Side, color),
		}
		return nil
	})
	return err
}

func (m *Match) combatPhase(ctx context.Context) error {
	m.setPhase(PhaseCombat)
	if err := m.runHooks(ctx, HookBeforeCombat, nil); err != nil {
		return err
	}

	atkA, atkB := m.Turn.Attacks[SideA], m.Turn.Attacks[SideB]
	var winner Side
	switch {
	case atkA.Color == atkB.Color:
		m.emitLog(LogEntry{Template: "both sides attack with {color}; nothing happens", Values: map[string]int{"color": int(atkA.Color)}})
		m.logAction("spell_clash", map[string]interface{}{"winner": nil, "color": atkA.Color.String()})
		return nil
	case atkA.Color.Beats(atkB.Color):
		winner = SideA
	case atkB.Color.Beats(atkA.Color):
		winner = SideB
	default:
		return unreachable(PhaseCombat, "attack colors %s and %s have no winner", atkA.Color, atkB.Color)
	}
	loser := winner.Opponent()
	m.Turn.Winner = sidePtr(winner)

	wc := m.Turn.Attacks[winner].Card
	damage := m.Settings.DefaultAttack
	if wc != nil {
		damage = wc.Attack.Resolve(m.Board.View(), winner, wc)
	}
	damage += m.Turn.ExtraDamage[winner]

	dmgItem := &CombatStackItem{Kind: CombatDamage, Value: damage, Source: wc, Target: loser}
	m.Turn.CombatStack = append(m.Turn.CombatStack, dmgItem)
	var healItem *CombatStackItem
	if wc != nil && wc.Heal != nil {
		healItem = &CombatStackItem{Kind: CombatHeal, Value: wc.Heal.Resolve(m.Board.View(), winner, wc), Source: wc, Target: winner}
		m.Turn.CombatStack = append(m.Turn.CombatStack, healItem)
	}

	cue := Cue{Player: sidePtr(winner), Target: sidePtr(loser), Active: true}
	if wc != nil {
		cue.CardKey = wc.Key
	}
	m.emitCue(cue)
	m.logAction("spell_clash", map[string]interface{}{"winner": winner.String(), "damage": damage})
	if err := m.runHooks(ctx, HookBeforeDamage, nil); err != nil {
		return err
	}

	dealt := m.damagePlayer(dmgItem.Target, dmgItem.Value)
	if healItem != nil {
		m.healPlayer(healItem.Target, healItem.Value)
	}
	if err := m.pause(ctx); err != nil {
		return err
	}
	if dealt > 0 && wc != nil {
		if err := m.invoke(ctx, wc, HookOnDealDamage, sidePtr(winner), nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *Match) afterCombatPhase(ctx context.Context) error {
	m.setPhase(PhaseAfterCombat)
	if err := m.runHooks(ctx, HookAfterCombat, nil); err != nil {
		return err
	}
	m.History = append(m.History, m.Turn)
	m.logAction("turn_complete", map[string]interface{}{
		"turn":        m.Turn.Number,
		"attacks":     m.Turn.Attacks,
		"extraDamage": m.Turn.ExtraDamage,
		"hp":          [2]int{m.Board.Player(SideA).HP, m.Board.Player(SideB).HP},
	})

	if m.Settings.EndOnDefeat {
		hpA, hpB := m.Board.Player(SideA).HP, m.Board.Player(SideB).HP
		if hpA <= 0 || hpB <= 0 {
			res := MatchResult{Reason: "defeat"}
			switch {
			case hpA > hpB:
				res.Winner = sidePtr(SideA)
			case hpB > hpA:
				res.Winner = sidePtr(SideB)
			}
			m.end(res)
			return nil
		}
	}
	return m.pause(ctx)
}

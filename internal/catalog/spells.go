package catalog

import "github.com/jason-s-yu/spellclash/internal/game"

func heal(n int) *game.CombatValue {
	v := game.Literal(n)
	return &v
}

func spells() []*game.SpellCard {
	return []*game.SpellCard{
		{
			CardInfo: game.CardInfo{ID: "spark", Name: "Spark", Description: "A colorless bolt. Cast it on any stack."},
			Attack:   game.Literal(10),
		},
		{
			CardInfo: game.CardInfo{ID: "ember_bolt", Name: "Ember Bolt", Description: "Deals 12."},
			Colors:   []game.Color{game.Red},
			Attack:   game.Literal(12),
		},
		{
			CardInfo: game.CardInfo{ID: "overcharge", Name: "Overcharge", Description: "Deals 7. Its damage rises by 5 before it lands."},
			Colors:   []game.Color{game.Red},
			Attack:   game.Literal(7),
			Effects: game.Effects{
				game.HookBeforeDamage: func(ctx *game.EffectContext) error {
					for _, item := range ctx.CombatStack() {
						if item.Kind == game.CombatDamage && item.Source != nil && item.Source.Key == ctx.Card().Info().Key {
							ctx.IncreaseCombatDamage(item, 5)
						}
					}
					return nil
				},
			},
		},
		{
			CardInfo: game.CardInfo{ID: "vine_whip", Name: "Vine Whip", Description: "Deals 8 and heals 6."},
			Colors:   []game.Color{game.Green},
			Attack:   game.Literal(8),
			Heal:     heal(6),
		},
		{
			CardInfo: game.CardInfo{ID: "insight", Name: "Insight", Description: "Deals 4. When revealed, draw a card."},
			Colors:   []game.Color{game.Green},
			Attack:   game.Literal(4),
			Effects: game.Effects{
				game.HookOnReveal: func(ctx *game.EffectContext) error {
					owner, ok := ctx.Owner()
					if !ok {
						return nil
					}
					return ctx.Draw(owner)
				},
			},
		},
		{
			CardInfo: game.CardInfo{ID: "tide_surge", Name: "Tide Surge", Description: "Deals 4 for each card in your blue stack."},
			Colors:   []game.Color{game.Blue},
			Attack: game.Computed(func(view game.BoardView, owner, _ game.Side, _ *game.SpellCard) int {
				return 4 * len(view.Stack(owner, game.Blue))
			}),
		},
		{
			CardInfo: game.CardInfo{ID: "mind_rot", Name: "Mind Rot", Description: "Deals 5. On damage, your opponent discards a card of their choice."},
			Colors:   []game.Color{game.Blue},
			Attack:   game.Literal(5),
			Effects: game.Effects{
				game.HookOnDealDamage: mindRot,
			},
		},
		{
			CardInfo: game.CardInfo{ID: "twin_flame", Name: "Twin Flame", Description: "Red or blue. Deals 9. When revealed, gain 3 extra damage this turn."},
			Colors:   []game.Color{game.Red, game.Blue},
			Attack:   game.Literal(9),
			Effects: game.Effects{
				game.HookOnReveal: func(ctx *game.EffectContext) error {
					if owner, ok := ctx.Owner(); ok {
						ctx.AddExtraDamage(owner, 3)
					}
					return nil
				},
			},
		},
	}
}

func mindRot(ctx *game.EffectContext) error {
	opp, ok := ctx.Opponent()
	if !ok {
		return nil
	}
	hand := ctx.Board().Hand(opp)
	if len(hand) == 0 {
		return nil
	}
	fallback := hand[0].Info().Key
	desc := game.DecisionDescriptor{
		Kind:   game.DecisionSelectFromHand,
		Prompt: "Discard a card",
		Min:    1,
		Max:    1,
		Scope:  game.ScopeSelf,
	}
	results, err := ctx.RequestDecision([]game.Side{opp}, desc, discardTimeout, func(game.Side) game.DecisionPayload {
		return game.DecisionPayload{Cards: []int{fallback}}
	})
	if err != nil {
		return err
	}
	res, ok := results[opp]
	if !ok || len(res.Payload.Cards) == 0 {
		return nil
	}
	card, _ := ctx.Board().Find(res.Payload.Cards[0])
	ctx.Discard(card)
	return nil
}

package catalog

import "github.com/jason-s-yu/spellclash/internal/game"

func fields() []*game.FieldCard {
	return []*game.FieldCard{
		{
			CardInfo: game.CardInfo{ID: "scorched_earth", Name: "Scorched Earth", Description: "After combat, both players take 2."},
			Color:    game.Red,
			Effects: game.Effects{
				game.HookAfterCombat: func(ctx *game.EffectContext) error {
					for _, side := range game.Sides {
						ctx.DamagePlayer(side, 2)
					}
					return nil
				},
			},
		},
		{
			CardInfo: game.CardInfo{ID: "verdant_grove", Name: "Verdant Grove", Description: "After combat, both players heal 3."},
			Color:    game.Green,
			Effects: game.Effects{
				game.HookAfterCombat: func(ctx *game.EffectContext) error {
					for _, side := range game.Sides {
						ctx.HealPlayer(side, 3)
					}
					return nil
				},
			},
		},
		{
			CardInfo: game.CardInfo{ID: "still_waters", Name: "Still Waters", Description: "Blue attacks deal 2 extra damage."},
			Color:    game.Blue,
			Effects: game.Effects{
				game.HookBeforeCombat: func(ctx *game.EffectContext) error {
					for _, side := range game.Sides {
						if atk := ctx.Attack(side); atk.Chosen && atk.Color == game.Blue {
							ctx.AddExtraDamage(side, 2)
						}
					}
					return nil
				},
				game.HookOnClashWin: func(ctx *game.EffectContext) error {
					ctx.Log("{card:0} calms the field", nil, []int{ctx.Card().Info().Key})
					return nil
				},
			},
		},
		{
			CardInfo: game.CardInfo{ID: "calm", Name: "Calm", Description: "A neutral field. Loses to any colored field."},
			Color:    game.ColorNone,
		},
	}
}

// internal/game/turn.go
package game

// Phase names a step of the turn cycle.
type Phase string

const (
	PhaseDraw        Phase = "draw"
	PhaseCast        Phase = "cast"
	PhaseReveal      Phase = "reveal"
	PhaseFieldClash  Phase = "field_clash"
	PhaseSpellSelect Phase = "spell_select"
	PhaseCombat      Phase = "combat"
	PhaseAfterCombat Phase = "after_combat"
)

// Attack records the stack a side attacked with. Card is nil for an empty stack.
type Attack struct {
	Chosen bool       `json:"chosen"`
	Color  Color      `json:"color"`
	Card   *SpellCard `json:"card,omitempty"`
}

// CombatItemKind tags a combat stack entry.
type CombatItemKind string

const (
	CombatDamage CombatItemKind = "damage"
	CombatHeal   CombatItemKind = "heal"
)

// CombatStackItem is a pending damage or heal that effects may adjust before it
// is applied.
type CombatStackItem struct {
	Kind   CombatItemKind `json:"kind"`
	Value  int            `json:"value"`
	Source *SpellCard     `json:"source,omitempty"`
	Target Side           `json:"target"`
}

// Turn is the record of one phase cycle. It is archived into the match history
// once the cycle completes.
type Turn struct {
	Number      int                `json:"number"`
	Drawn       [2][]Card          `json:"drawn"`
	Cast        [2]map[Color]Card  `json:"-"`
	Attacks     [2]Attack          `json:"attacks"`
	ExtraDamage [2]int             `json:"extraDamage"`
	CombatStack []*CombatStackItem `json:"combatStack"`
	Winner      *Side              `json:"winner,omitempty"`
	Previous    *Turn              `json:"-"`
}

func newTurn(number int, prev *Turn) *Turn {
	return &Turn{
		Number:   number,
		Cast:     [2]map[Color]Card{{}, {}},
		Previous: prev,
	}
}

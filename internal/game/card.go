// internal/game/card.go
package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Side identifies one of the two match participants.
type Side int

const (
	SideA Side = iota
	SideB
)

// Sides lists both sides in pipeline order.
var Sides = [2]Side{SideA, SideB}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	if s == SideA {
		return "a"
	}
	return "b"
}

// ParseSide converts "a"/"b" into a Side.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(v) {
	case "a":
		return SideA, nil
	case "b":
		return SideB, nil
	}
	return SideA, fmt.Errorf("unknown side %q", v)
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Color is one of the three stack colors. ColorNone marks colorless spells,
// neutral field cards and the field slot of a casting area.
type Color int

const (
	ColorNone Color = iota
	Red
	Green
	Blue
)

// StackColors lists the stack colors in pipeline order.
var StackColors = [3]Color{Red, Green, Blue}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "none"
	}
}

// ParseColor converts a color name into a Color.
func ParseColor(v string) (Color, error) {
	switch strings.ToLower(v) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	case "", "none":
		return ColorNone, nil
	}
	return ColorNone, fmt.Errorf("unknown color %q", v)
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Beats reports whether c wins a clash against o: red beats green, green beats
// blue, blue beats red. Neutral never beats anything.
func (c Color) Beats(o Color) bool {
	switch c {
	case Red:
		return o == Green
	case Green:
		return o == Blue
	case Blue:
		return o == Red
	}
	return false
}

// Hook names a trigger point in the hook pipeline.
type Hook string

const (
	HookBeforeDraw   Hook = "beforeDraw"
	HookBeforeCast   Hook = "beforeCast"
	HookBeforeReveal Hook = "beforeReveal"
	HookBeforeSpell  Hook = "beforeSpell"
	HookBeforeCombat Hook = "beforeCombat"
	HookBeforeDamage Hook = "beforeDamage"
	HookAfterCombat  Hook = "afterCombat"
	HookOnDraw       Hook = "onDraw"
	HookOnReveal     Hook = "onReveal"
	HookOnDealDamage Hook = "onDealDamage"
	HookOnClashWin   Hook = "onClashWin"
	HookOnClashLose  Hook = "onClashLose"
)

// Effect is a card behavior bound to a hook. It runs to completion on the match
// goroutine and may only change the match through the EffectContext.
type Effect func(ctx *EffectContext) error

// Effects maps hook names to card behaviors.
type Effects map[Hook]Effect

// CardKind tags the two card variants.
type CardKind string

const (
	KindSpell CardKind = "spell"
	KindField CardKind = "field"
)

// CardInfo holds the fields common to every card. Key is assigned once when the
// deck is loaded into a match and is the only identity used for lookups.
type CardInfo struct {
	Key         int    `json:"key"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Info returns the common card fields.
func (i *CardInfo) Info() *CardInfo { return i }

// Card is implemented by *SpellCard and *FieldCard only.
type Card interface {
	Info() *CardInfo
	Kind() CardKind
	Hooks() Effects
	withKey(key int) Card
}

// ComputeFunc derives a combat value from the current board. It must not retain
// the view beyond the call.
type ComputeFunc func(view BoardView, owner, opponent Side, card *SpellCard) int

// CombatValue is either a literal integer or a value computed from the board.
type CombatValue struct {
	literal int
	compute ComputeFunc
}

// Literal returns a fixed combat value.
func Literal(n int) CombatValue { return CombatValue{literal: n} }

// Computed returns a board-dependent combat value.
func Computed(fn ComputeFunc) CombatValue { return CombatValue{compute: fn} }

// IsComputed reports whether the value depends on the board.
func (v CombatValue) IsComputed() bool { return v.compute != nil }

// Resolve evaluates the value for the card owned by owner.
func (v CombatValue) Resolve(view BoardView, owner Side, card *SpellCard) int {
	if v.compute != nil {
		return v.compute(view, owner, owner.Opponent(), card)
	}
	return v.literal
}

// SpellCard is played onto one of the three color stacks.
type SpellCard struct {
	CardInfo
	Colors  []Color      `json:"colors"`
	Attack  CombatValue  `json:"-"`
	Heal    *CombatValue `json:"-"`
	Effects Effects      `json:"-"`
}

func (c *SpellCard) Kind() CardKind { return KindSpell }
func (c *SpellCard) Hooks() Effects { return c.Effects }

func (c *SpellCard) withKey(key int) Card {
	cp := *c
	cp.Key = key
	cp.Colors = append([]Color(nil), c.Colors...)
	return &cp
}

// HasColor reports whether the spell carries color.
func (c *SpellCard) HasColor(color Color) bool {
	for _, col := range c.Colors {
		if col == color {
			return true
		}
	}
	return false
}

// CastColors returns the stacks this spell may be cast onto. Colorless spells
// may go anywhere.
func (c *SpellCard) CastColors() []Color {
	if len(c.Colors) == 0 {
		return StackColors[:]
	}
	out := make([]Color, 0, len(c.Colors))
	for _, col := range StackColors {
		if c.HasColor(col) {
			out = append(out, col)
		}
	}
	return out
}

// FieldCard is a global card. Its effects never receive an owning side.
type FieldCard struct {
	CardInfo
	Color   Color   `json:"color"`
	Effects Effects `json:"-"`
}

func (c *FieldCard) Kind() CardKind { return KindField }
func (c *FieldCard) Hooks() Effects { return c.Effects }

func (c *FieldCard) withKey(key int) Card {
	cp := *c
	cp.Key = key
	return &cp
}

// MarshalJSON keeps CardInfo flattened alongside the variant tag.
func (c *SpellCard) MarshalJSON() ([]byte, error) {
	type alias SpellCard
	return json.Marshal(struct {
		Kind CardKind `json:"kind"`
		*alias
	}{KindSpell, (*alias)(c)})
}

func (c *FieldCard) MarshalJSON() ([]byte, error) {
	type alias FieldCard
	return json.Marshal(struct {
		Kind CardKind `json:"kind"`
		*alias
	}{KindField, (*alias)(c)})
}

// sameCard compares cards by key, treating nil as distinct from any card.
func sameCard(a, b Card) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Info().Key == b.Info().Key
}

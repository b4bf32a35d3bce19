// internal/game/sync_state.go
package game

import "github.com/google/uuid"

// CardView is a card as seen by a client. Hidden cards keep only their key.
type CardView struct {
	Key         int      `json:"key"`
	Known       bool     `json:"known"`
	Kind        CardKind `json:"kind,omitempty"`
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Colors      []Color  `json:"colors,omitempty"`
	Color       *Color   `json:"color,omitempty"`
	Attack      *int     `json:"attack,omitempty"`
	Heal        *int     `json:"heal,omitempty"`
}

func (v CardView) hidden() CardView { return CardView{Key: v.Key} }

// PlayerState is one side of a snapshot.
type PlayerState struct {
	Side     Side                  `json:"side"`
	HP       int                   `json:"hp"`
	Hand     []CardView            `json:"hand"`
	DrawPile []CardView            `json:"drawPile"`
	Stacks   map[string][]CardView `json:"stacks"`
	Casting  map[string]*CardView  `json:"casting"`
	Pending  *DecisionView         `json:"pending,omitempty"`
}

// MatchState is a full snapshot of the board.
type MatchState struct {
	MatchID     uuid.UUID      `json:"matchId"`
	Turn        int            `json:"turn"`
	Phase       Phase          `json:"phase"`
	Over        bool           `json:"over"`
	Players     [2]PlayerState `json:"players"`
	Field       []CardView     `json:"field"`
	DiscardPile []CardView     `json:"discardPile"`
	Affecting   []int          `json:"affecting,omitempty"`
}

func viewCard(b *Board, c Card, owner *Side) CardView {
	info := c.Info()
	v := CardView{
		Key:         info.Key,
		Known:       true,
		Kind:        c.Kind(),
		ID:          info.ID,
		Name:        info.Name,
		Description: info.Description,
	}
	switch card := c.(type) {
	case *SpellCard:
		v.Colors = append([]Color(nil), card.Colors...)
		side := SideA
		if owner != nil {
			side = *owner
		}
		atk := card.Attack.Resolve(b.View(), side, card)
		v.Attack = &atk
		if card.Heal != nil {
			h := card.Heal.Resolve(b.View(), side, card)
			v.Heal = &h
		}
	case *FieldCard:
		col := card.Color
		v.Color = &col
	}
	return v
}

func viewPile(b *Board, p *Pile, owner *Side) []CardView {
	cards := p.Cards()
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = viewCard(b, c, owner)
	}
	return out
}

// buildState captures the full, unredacted board. Called on the match goroutine.
func (m *Match) buildState() MatchState {
	st := MatchState{
		MatchID:     m.ID,
		Phase:       m.phase,
		Over:        m.over,
		Field:       viewPile(m.Board, m.Board.Field, nil),
		DiscardPile: viewPile(m.Board, m.Board.DiscardPile, nil),
		Affecting:   append([]int(nil), m.affecting...),
	}
	if m.Turn != nil {
		st.Turn = m.Turn.Number
	}
	for _, side := range Sides {
		side := side
		p := m.Board.Player(side)
		ps := PlayerState{
			Side:     side,
			HP:       p.HP,
			Hand:     viewPile(m.Board, p.Hand, &side),
			DrawPile: viewPile(m.Board, p.DrawPile, &side),
			Stacks:   make(map[string][]CardView, 3),
			Casting:  make(map[string]*CardView, 4),
		}
		for _, c := range StackColors {
			ps.Stacks[c.String()] = viewPile(m.Board, p.Stack(c), &side)
		}
		for _, c := range []Color{ColorNone, Red, Green, Blue} {
			slot := "field"
			if c != ColorNone {
				slot = c.String()
			}
			if top := p.CastSlot(c).PeekTop(); top != nil {
				cv := viewCard(m.Board, top, &side)
				ps.Casting[slot] = &cv
			}
		}
		if pd := m.arbiter.Pending(side); pd != nil {
			ps.Pending = pd.view()
		}
		st.Players[side] = ps
	}
	return st
}

// Redact returns the state as side forSide may see it: the opponent's hand and
// staged casts, and both draw piles, reduce to card keys. The opponent's
// pending decision shows its kind and bounds only.
func Redact(st MatchState, forSide Side) MatchState {
	out := st
	out.Field = append([]CardView(nil), st.Field...)
	out.DiscardPile = append([]CardView(nil), st.DiscardPile...)
	for _, side := range Sides {
		src := st.Players[side]
		ps := src
		ps.DrawPile = hideAll(src.DrawPile)
		if side != forSide {
			ps.Hand = hideAll(src.Hand)
			ps.Casting = make(map[string]*CardView, len(src.Casting))
			for slot, cv := range src.Casting {
				h := cv.hidden()
				ps.Casting[slot] = &h
			}
			if src.Pending != nil {
				ps.Pending = redactDecision(src.Pending)
			}
		}
		out.Players[side] = ps
	}
	return out
}

// redactDecision keeps only the shape of an opponent's decision. Prompts,
// options and allowed colors can describe a face-down card.
func redactDecision(v *DecisionView) *DecisionView {
	return &DecisionView{
		Side: v.Side,
		Descriptor: DecisionDescriptor{
			Kind:  v.Descriptor.Kind,
			Min:   v.Descriptor.Min,
			Max:   v.Descriptor.Max,
			Scope: v.Descriptor.Scope,
		},
		RequestedAt: v.RequestedAt,
		ExpiresAt:   v.ExpiresAt,
	}
}

func hideAll(cards []CardView) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = c.hidden()
	}
	return out
}

// Snapshot returns the latest state redacted for forSide. Safe to call from any
// goroutine.
func (m *Match) Snapshot(forSide Side) MatchState {
	m.stateMu.RLock()
	st := m.lastState
	m.stateMu.RUnlock()
	return Redact(st, forSide)
}

// State returns the latest unredacted state. It is meant for persistence and
// must not be sent to clients as is.
func (m *Match) State() MatchState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.lastState
}

// internal/game/events.go
package game

// GameEventType is an enum-like type for broadcasting match activity.
type GameEventType string

const (
	EventSnapshot         GameEventType = "game_snapshot"     // full board after a mutation
	EventPhase            GameEventType = "game_phase"        // phase transition
	EventLog              GameEventType = "game_log"          // templated log entry
	EventHighlight        GameEventType = "visual_highlight"  // card or player highlight cue
	EventAttack           GameEventType = "visual_attack"     // attack cue from one side to another
	EventDecisionRequest  GameEventType = "decision_request"  // private: a side must decide
	EventDecisionResolved GameEventType = "decision_resolved" // a side's decision closed
	EventMatchEnd         GameEventType = "match_end"
	EventMatchFault       GameEventType = "match_fault" // unreachable state, match aborted
)

// LogEntry is a log line with placeholders the renderer substitutes, e.g.
// "{player:0} heals {amount}". Players and Cards are indexed by placeholder.
type LogEntry struct {
	Template string         `json:"template"`
	Players  []Side         `json:"players,omitempty"`
	Cards    []int          `json:"cards,omitempty"`
	Values   map[string]int `json:"values,omitempty"`
}

// Cue is a visual cue keyed by card or player identity.
type Cue struct {
	CardKey int   `json:"cardKey,omitempty"`
	Player  *Side `json:"player,omitempty"`
	Target  *Side `json:"target,omitempty"`
	Active  bool  `json:"active"`
}

// GameEvent holds data about an event that can be broadcast to clients in a
// consistent format. Audience restricts delivery to one side when set.
type GameEvent struct {
	Type     GameEventType `json:"type"`
	Seq      int           `json:"seq"`
	Turn     int           `json:"turn"`
	Phase    Phase         `json:"phase,omitempty"`
	Audience *Side         `json:"-"`

	Log      *LogEntry     `json:"log,omitempty"`
	Cue      *Cue          `json:"cue,omitempty"`
	Decision *DecisionView `json:"decision,omitempty"`
	State    *MatchState   `json:"state,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

func sidePtr(s Side) *Side { return &s }

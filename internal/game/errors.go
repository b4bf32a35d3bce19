// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPendingDecision is returned when a side submits without a live decision,
	// including a late submission after the decision timed out.
	ErrNoPendingDecision = errors.New("no pending decision for side")

	// ErrMatchOver is returned for submissions to a finished match.
	ErrMatchOver = errors.New("match is over")
)

// InvalidDecisionError rejects a submission that violates the descriptor. The
// decision stays pending.
type InvalidDecisionError struct {
	Side   Side
	Kind   DecisionKind
	Reason string
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid %s decision from side %s: %s", e.Kind, e.Side, e.Reason)
}

// UnreachableError marks a rules combination that should never occur. It aborts
// the match.
type UnreachableError struct {
	Phase  Phase
	Detail string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unreachable state in %s phase: %s", e.Phase, e.Detail)
}

func unreachable(phase Phase, format string, args ...interface{}) error {
	return &UnreachableError{Phase: phase, Detail: fmt.Sprintf(format, args...)}
}

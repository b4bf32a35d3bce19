// internal/game/decision.go
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DecisionKind names the kind of choice a side is asked to make.
type DecisionKind string

const (
	DecisionSelectFromHand   DecisionKind = "select_from_hand"
	DecisionSelectSpellStack DecisionKind = "select_spell_stack"
)

// DecisionScope says whose cards or stacks the choice ranges over.
type DecisionScope string

const (
	ScopeSelf     DecisionScope = "self"
	ScopeOpponent DecisionScope = "opponent"
)

// DecisionState tracks a PendingDecision: pending, then fulfilled or timed out.
type DecisionState string

const (
	DecisionPending   DecisionState = "pending"
	DecisionFulfilled DecisionState = "fulfilled"
	DecisionTimedOut  DecisionState = "timed_out"
	DecisionCancelled DecisionState = "cancelled"
)

// DecisionOption is one selectable card, captured when the decision opens so
// submissions can be validated off the match goroutine.
type DecisionOption struct {
	Key    int      `json:"key"`
	Kind   CardKind `json:"kind"`
	Colors []Color  `json:"colors,omitempty"`
}

// DecisionDescriptor constrains what counts as a valid answer.
type DecisionDescriptor struct {
	Kind          DecisionKind     `json:"kind"`
	Prompt        string           `json:"prompt,omitempty"`
	Min           int              `json:"min"`
	Max           int              `json:"max"`
	Scope         DecisionScope    `json:"scope"`
	AllowedKinds  []CardKind       `json:"allowedKinds,omitempty"`
	AllowedColors []Color          `json:"allowedColors,omitempty"`
	Options       []DecisionOption `json:"options,omitempty"`
}

// DecisionPayload is a side's answer: card keys for hand selections, colors for
// stack selections.
type DecisionPayload struct {
	Cards  []int   `json:"cards,omitempty"`
	Colors []Color `json:"colors,omitempty"`
}

// DecisionResult is how a side's decision was resolved.
type DecisionResult struct {
	Side     Side            `json:"side"`
	Kind     DecisionKind    `json:"kind"`
	Payload  DecisionPayload `json:"payload"`
	TimedOut bool            `json:"timedOut"`
}

func (d DecisionDescriptor) colorAllowed(c Color) bool {
	if len(d.AllowedColors) == 0 {
		return true
	}
	for _, ac := range d.AllowedColors {
		if ac == c {
			return true
		}
	}
	return false
}

func (d DecisionDescriptor) kindAllowed(k CardKind) bool {
	if len(d.AllowedKinds) == 0 {
		return true
	}
	for _, ak := range d.AllowedKinds {
		if ak == k {
			return true
		}
	}
	return false
}

// Validate checks a payload against the descriptor.
func (d DecisionDescriptor) Validate(side Side, p DecisionPayload) error {
	reject := func(format string, args ...interface{}) error {
		return &InvalidDecisionError{Side: side, Kind: d.Kind, Reason: fmt.Sprintf(format, args...)}
	}

	switch d.Kind {
	case DecisionSelectFromHand:
		if len(p.Cards) < d.Min || len(p.Cards) > d.Max {
			return reject("expected between %d and %d cards, got %d", d.Min, d.Max, len(p.Cards))
		}
		seen := make(map[int]bool, len(p.Cards))
		for _, key := range p.Cards {
			if seen[key] {
				return reject("card %d selected twice", key)
			}
			seen[key] = true
			opt, ok := d.option(key)
			if !ok {
				return reject("card %d is not selectable", key)
			}
			if !d.kindAllowed(opt.Kind) {
				return reject("card %d is a %s card", key, opt.Kind)
			}
			if opt.Kind == KindSpell && len(opt.Colors) > 0 && len(d.AllowedColors) > 0 {
				match := false
				for _, c := range opt.Colors {
					if d.colorAllowed(c) {
						match = true
						break
					}
				}
				if !match {
					return reject("card %d has no allowed color", key)
				}
			}
		}
	case DecisionSelectSpellStack:
		if len(p.Colors) < d.Min || len(p.Colors) > d.Max {
			return reject("expected between %d and %d stacks, got %d", d.Min, d.Max, len(p.Colors))
		}
		seen := make(map[Color]bool, len(p.Colors))
		for _, c := range p.Colors {
			if c == ColorNone {
				return reject("stack color is required")
			}
			if seen[c] {
				return reject("stack %s selected twice", c)
			}
			seen[c] = true
			if !d.colorAllowed(c) {
				return reject("stack %s is not allowed", c)
			}
		}
	default:
		return reject("unknown decision kind")
	}
	return nil
}

func (d DecisionDescriptor) option(key int) (DecisionOption, bool) {
	for _, o := range d.Options {
		if o.Key == key {
			return o, true
		}
	}
	return DecisionOption{}, false
}

// PendingDecision is one live request to one side. It resolves exactly once,
// by submission or by timer; whichever comes first stops the other.
type PendingDecision struct {
	Side        Side
	Descriptor  DecisionDescriptor
	RequestedAt time.Time
	ExpiresAt   time.Time

	mu     sync.Mutex
	state  DecisionState
	result DecisionResult
	timer  *time.Timer
	done   chan<- *PendingDecision
}

// State returns the current state of the decision.
func (pd *PendingDecision) State() DecisionState {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	return pd.state
}

func (pd *PendingDecision) finish(state DecisionState, result DecisionResult) bool {
	pd.mu.Lock()
	defer pd.mu.Unlock()
	if pd.state != DecisionPending {
		return false
	}
	pd.state = state
	pd.result = result
	if pd.timer != nil {
		pd.timer.Stop()
	}
	if state != DecisionCancelled {
		pd.done <- pd
	}
	return true
}

func (pd *PendingDecision) expire() {
	pd.finish(DecisionTimedOut, DecisionResult{Side: pd.Side, Kind: pd.Descriptor.Kind, TimedOut: true})
}

// DecisionView is the client-facing shape of a pending decision.
type DecisionView struct {
	Side        Side               `json:"side"`
	Descriptor  DecisionDescriptor `json:"descriptor"`
	RequestedAt time.Time          `json:"requestedAt"`
	ExpiresAt   time.Time          `json:"expiresAt"`
	Result      *DecisionResult    `json:"result,omitempty"`
}

func (pd *PendingDecision) view() *DecisionView {
	return &DecisionView{
		Side:        pd.Side,
		Descriptor:  pd.Descriptor,
		RequestedAt: pd.RequestedAt,
		ExpiresAt:   pd.ExpiresAt,
	}
}

// DecisionRequest asks one side for one decision.
type DecisionRequest struct {
	Side       Side
	Descriptor DecisionDescriptor
}

// Arbiter owns the per-side decision slots.
type Arbiter struct {
	mu    sync.Mutex
	slots [2]*PendingDecision
	stale int

	log     logrus.FieldLogger
	now     func() time.Time
	onOpen  func(pd *PendingDecision)
	onClose func(pd *PendingDecision, res DecisionResult)
}

// NewArbiter creates an arbiter with empty slots.
func NewArbiter(log logrus.FieldLogger) *Arbiter {
	return &Arbiter{log: log, now: time.Now}
}

// Pending returns the live decision for a side, or nil. A decision that has
// resolved but not yet been collected by Request is not live.
func (a *Arbiter) Pending(side Side) *PendingDecision {
	a.mu.Lock()
	defer a.mu.Unlock()
	pd := a.slots[side]
	if pd == nil || pd.State() != DecisionPending {
		return nil
	}
	return pd
}

// StaleClears counts slot clears that found a different decision in the slot.
func (a *Arbiter) StaleClears() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stale
}

// Submit delivers a side's answer to its live decision. Invalid payloads are
// rejected and leave the decision pending.
func (a *Arbiter) Submit(side Side, p DecisionPayload) error {
	pd := a.Pending(side)
	if pd == nil || pd.State() != DecisionPending {
		return ErrNoPendingDecision
	}
	if err := pd.Descriptor.Validate(side, p); err != nil {
		return err
	}
	if !pd.finish(DecisionFulfilled, DecisionResult{Side: side, Kind: pd.Descriptor.Kind, Payload: p}) {
		return ErrNoPendingDecision
	}
	return nil
}

func (a *Arbiter) open(req DecisionRequest, timeout time.Duration, done chan<- *PendingDecision) *PendingDecision {
	now := a.now()
	pd := &PendingDecision{
		Side:        req.Side,
		Descriptor:  req.Descriptor,
		RequestedAt: now,
		ExpiresAt:   now.Add(timeout),
		state:       DecisionPending,
		done:        done,
	}
	pd.mu.Lock()
	pd.timer = time.AfterFunc(timeout, pd.expire)
	pd.mu.Unlock()

	a.mu.Lock()
	if prev := a.slots[req.Side]; prev != nil && prev.State() == DecisionPending {
		a.log.WithFields(logrus.Fields{
			"side": req.Side,
			"kind": prev.Descriptor.Kind,
		}).Warn("overwriting a live decision slot")
	}
	a.slots[req.Side] = pd
	a.mu.Unlock()

	if a.onOpen != nil {
		a.onOpen(pd)
	}
	return pd
}

// clear empties the side's slot only if it still holds pd.
func (a *Arbiter) clear(pd *PendingDecision) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.slots[pd.Side] == pd {
		a.slots[pd.Side] = nil
		return
	}
	a.stale++
	a.log.WithFields(logrus.Fields{
		"side": pd.Side,
		"kind": pd.Descriptor.Kind,
	}).Warn("decision slot no longer holds the resolved decision; leaving it in place")
}

// Request opens one decision per request and waits until all are resolved,
// handling each in the order it completes. onTimeout supplies the payload for a
// side whose timer fired first. onResolve runs on the calling goroutine and may
// open nested decisions. Results are returned in resolution order.
func (a *Arbiter) Request(
	ctx context.Context,
	reqs []DecisionRequest,
	timeout time.Duration,
	onTimeout func(side Side) DecisionPayload,
	onResolve func(res DecisionResult) error,
) ([]DecisionResult, error) {
	done := make(chan *PendingDecision, len(reqs))
	outstanding := make(map[*PendingDecision]struct{}, len(reqs))
	for _, req := range reqs {
		outstanding[a.open(req, timeout, done)] = struct{}{}
	}

	abandon := func() {
		for pd := range outstanding {
			pd.finish(DecisionCancelled, DecisionResult{Side: pd.Side, Kind: pd.Descriptor.Kind})
			a.mu.Lock()
			if a.slots[pd.Side] == pd {
				a.slots[pd.Side] = nil
			}
			a.mu.Unlock()
		}
	}

	results := make([]DecisionResult, 0, len(reqs))
	for len(outstanding) > 0 {
		select {
		case <-ctx.Done():
			abandon()
			return results, ctx.Err()
		case pd := <-done:
			delete(outstanding, pd)
			res := pd.result
			if res.TimedOut && onTimeout != nil {
				res.Payload = onTimeout(pd.Side)
			}
			a.clear(pd)
			if a.onClose != nil {
				a.onClose(pd, res)
			}
			results = append(results, res)
			if onResolve != nil {
				if err := onResolve(res); err != nil {
					abandon()
					return results, err
				}
			}
		}
	}
	return results, nil
}

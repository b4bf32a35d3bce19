// internal/game/match.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/sirupsen/logrus"
)

// MatchResult summarises a finished match.
type MatchResult struct {
	MatchID uuid.UUID `json:"matchId"`
	Winner  *Side     `json:"winner,omitempty"`
	HP      [2]int    `json:"hp"`
	Turns   int       `json:"turns"`
	Reason  string    `json:"reason"`
}

// Match holds the entire state for a single match instance in memory. All board
// mutation happens on the goroutine running Run.
type Match struct {
	ID       uuid.UUID
	Settings Settings
	Board    *Board
	Turn     *Turn
	History  []*Turn

	// BroadcastFn receives every event in order, on the match goroutine.
	// Snapshot events carry the unredacted state; use Redact per side before
	// forwarding. Events with an Audience are private to that side.
	BroadcastFn func(ev GameEvent)

	// ActionSink receives a record of every state change, for the historian.
	ActionSink func(rec cache.MatchActionRecord)

	// OnMatchEnd is invoked once when the match stops.
	OnMatchEnd func(res MatchResult)

	arbiter     *Arbiter
	rng         *rand.Rand
	log         *logrus.Entry
	phase       Phase
	affecting   []int
	seq         int
	actionIndex int
	over        bool
	finished    atomic.Bool
	running     atomic.Bool

	stateMu   sync.RWMutex
	lastState MatchState
}

// Option customises a new match.
type Option func(*matchConfig)

type matchConfig struct {
	id     uuid.UUID
	logger logrus.FieldLogger
	seed   *int64
	secret []byte
}

// WithID fixes the match ID.
func WithID(id uuid.UUID) Option { return func(c *matchConfig) { c.id = id } }

// WithLogger sets the base logger.
func WithLogger(l logrus.FieldLogger) Option { return func(c *matchConfig) { c.logger = l } }

// WithSeed fixes the shuffle seed.
func WithSeed(seed int64) Option { return func(c *matchConfig) { c.seed = &seed } }

// WithSeedSecret derives the shuffle seed from the match ID and secret.
func WithSeedSecret(secret []byte) Option { return func(c *matchConfig) { c.secret = secret } }

// NewMatch builds a match from two deck lists. Every card is copied and given a
// key unique for the life of the match, then each draw pile is shuffled.
func NewMatch(deckA, deckB []Card, settings Settings, opts ...Option) (*Match, error) {
	cfg := matchConfig{id: uuid.New()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	seed := DeriveSeed(cfg.id, cfg.secret)
	if cfg.seed != nil {
		seed = *cfg.seed
	}

	m := &Match{
		ID:       cfg.id,
		Settings: settings,
		Board:    NewBoard(),
		rng:      rand.New(rand.NewSource(seed)),
		log:      cfg.logger.WithField("match_id", cfg.id),
	}
	m.arbiter = NewArbiter(m.log)
	m.arbiter.onOpen = m.decisionOpened
	m.arbiter.onClose = m.decisionClosed

	key := 0
	for i, deck := range [2][]Card{deckA, deckB} {
		pile := m.Board.Players[i].DrawPile
		for j, c := range deck {
			if c == nil {
				return nil, fmt.Errorf("deck %s: card %d is nil", Sides[i], j)
			}
			key++
			pile.push(c.withKey(key))
		}
		pile.Shuffle(m.rng)
	}
	m.lastState = m.buildState()

	m.log.WithFields(logrus.Fields{
		"deck_a": len(deckA),
		"deck_b": len(deckB),
		"seed":   seed,
	}).Info("match created")
	return m, nil
}

// Over reports whether the match has stopped. Safe from any goroutine.
func (m *Match) Over() bool { return m.finished.Load() }

// Pending returns the live decision view for side, or nil.
func (m *Match) Pending(side Side) *DecisionView {
	if pd := m.arbiter.Pending(side); pd != nil {
		return pd.view()
	}
	return nil
}

// StaleDecisionClears reports how often a resolved decision found its slot
// taken by a newer one.
func (m *Match) StaleDecisionClears() int { return m.arbiter.StaleClears() }

// Submit delivers a side's decision. It returns ErrNoPendingDecision when the
// side has nothing pending, or an *InvalidDecisionError that leaves the
// decision open for another try.
func (m *Match) Submit(side Side, p DecisionPayload) error {
	if m.finished.Load() {
		return ErrMatchOver
	}
	err := m.arbiter.Submit(side, p)
	entry := m.log.WithField("side", side)
	var invalid *InvalidDecisionError
	switch {
	case err == nil:
		entry.Debug("decision submitted")
	case errors.As(err, &invalid):
		entry.WithError(err).Info("decision rejected")
	default:
		entry.WithError(err).Debug("submission without a pending decision")
	}
	return err
}

// Run drives the phase cycle until the match ends, ctx is cancelled, or an
// unreachable state aborts it. With no MaxTurns and EndOnDefeat unset it loops
// until ctx is cancelled.
func (m *Match) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("match is already running")
	}
	m.log.Info("match started")
	m.logAction("match_start", map[string]interface{}{"settings": m.Settings})
	m.emitSnapshot()

	for {
		if m.Settings.MaxTurns > 0 && len(m.History) >= m.Settings.MaxTurns {
			m.end(MatchResult{Reason: "max_turns"})
			return nil
		}
		if err := m.playTurn(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				m.end(MatchResult{Reason: "cancelled"})
				return err
			}
			m.fault(err)
			return err
		}
		if m.over {
			return nil
		}
	}
}

func (m *Match) playTurn(ctx context.Context) error {
	var prev *Turn
	if n := len(m.History); n > 0 {
		prev = m.History[n-1]
	}
	m.Turn = newTurn(len(m.History)+1, prev)
	m.log = m.log.WithField("turn", m.Turn.Number)

	steps := []func(context.Context) error{
		m.drawPhase,
		m.castPhase,
		m.revealPhase,
		m.spellSelectPhase,
		m.combatPhase,
		m.afterCombatPhase,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
		if m.over {
			return nil
		}
	}
	return nil
}

func (m *Match) setPhase(p Phase) {
	m.phase = p
	m.log.WithField("phase", p).Debug("phase start")
	m.emit(GameEvent{Type: EventPhase})
	m.emitSnapshot()
}

// pause inserts the presentation delay between visible steps.
func (m *Match) pause(ctx context.Context) error {
	d := m.Settings.phaseDelay()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Match) end(res MatchResult) {
	if m.over {
		return
	}
	m.over = true
	m.finished.Store(true)
	res.MatchID = m.ID
	res.Turns = len(m.History)
	for _, side := range Sides {
		res.HP[side] = m.Board.Player(side).HP
	}
	payload := map[string]interface{}{
		"reason": res.Reason,
		"hp":     res.HP,
		"turns":  res.Turns,
	}
	if res.Winner != nil {
		payload["winner"] = res.Winner.String()
	}
	m.emit(GameEvent{Type: EventMatchEnd, Payload: payload})
	m.emitSnapshot()
	m.logAction("match_end", payload)
	m.log.WithFields(logrus.Fields(payload)).Info("match ended")
	if m.OnMatchEnd != nil {
		m.OnMatchEnd(res)
	}
}

// fault aborts the match with a diagnosable error.
func (m *Match) fault(err error) {
	m.log.WithError(err).Error("match aborted")
	m.emit(GameEvent{Type: EventMatchFault, Payload: map[string]interface{}{"error": err.Error()}})
	m.end(MatchResult{Reason: "fault"})
}

func (m *Match) emit(ev GameEvent) {
	m.seq++
	ev.Seq = m.seq
	if m.Turn != nil {
		ev.Turn = m.Turn.Number
	}
	ev.Phase = m.phase
	if m.BroadcastFn != nil {
		m.BroadcastFn(ev)
	}
}

func (m *Match) emitSnapshot() {
	st := m.buildState()
	m.stateMu.Lock()
	m.lastState = st
	m.stateMu.Unlock()
	m.emit(GameEvent{Type: EventSnapshot, State: &st})
}

func (m *Match) emitLog(entry LogEntry) {
	m.emit(GameEvent{Type: EventLog, Log: &entry})
}

func (m *Match) emitCue(cue Cue) {
	t := EventHighlight
	if cue.Target != nil {
		t = EventAttack
	}
	m.emit(GameEvent{Type: t, Cue: &cue})
}

func (m *Match) decisionOpened(pd *PendingDecision) {
	m.emit(GameEvent{Type: EventDecisionRequest, Audience: sidePtr(pd.Side), Decision: pd.view()})
	m.emitSnapshot()
	m.logAction("decision_request", map[string]interface{}{"side": pd.Side.String(), "kind": pd.Descriptor.Kind})
}

func (m *Match) decisionClosed(pd *PendingDecision, res DecisionResult) {
	v := pd.view()
	v.Result = &res
	m.emit(GameEvent{Type: EventDecisionResolved, Audience: sidePtr(pd.Side), Decision: v})
	if res.TimedOut {
		m.emitLog(LogEntry{Template: "{player:0} ran out of time", Players: []Side{pd.Side}})
	}
	m.emitSnapshot()
	m.logAction("decision_resolved", map[string]interface{}{
		"side":     pd.Side.String(),
		"kind":     res.Kind,
		"timedOut": res.TimedOut,
		"cards":    res.Payload.Cards,
		"colors":   res.Payload.Colors,
	})
}

// logAction hands an action record to the sink for the historian.
func (m *Match) logAction(actionType string, payload map[string]interface{}) {
	m.actionIndex++
	if m.ActionSink == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.MatchActionRecord{
		MatchID:       m.ID,
		ActionIndex:   m.actionIndex,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if m.Turn != nil {
		rec.Turn = m.Turn.Number
	}
	m.ActionSink(rec)
}

// internal/handlers/match_server.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/spellclash/internal/auth"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/catalog"
	"github.com/jason-s-yu/spellclash/internal/database"
	"github.com/jason-s-yu/spellclash/internal/game"
	"github.com/jason-s-yu/spellclash/internal/models"
	"github.com/sirupsen/logrus"
)

// outboxSize bounds the events queued for one seat while its socket is slow or
// disconnected.
const outboxSize = 256

// DefaultRetention is how long a finished match stays queryable.
const DefaultRetention = 10 * time.Minute

// MatchServer owns the live matches and the seats connected to them.
type MatchServer struct {
	Store     *game.MatchStore
	Signer    *auth.SeatSigner
	Publisher *cache.Publisher // optional action log
	Persist   bool             // write match rows through database.DB

	SeedSecret []byte
	Retention  time.Duration

	logger *logrus.Logger
	ctx    context.Context

	mu       sync.Mutex
	sessions map[uuid.UUID]*matchSession
}

// NewMatchServer creates a server whose matches stop when ctx is cancelled.
func NewMatchServer(ctx context.Context, logger *logrus.Logger, signer *auth.SeatSigner) *MatchServer {
	return &MatchServer{
		Store:     game.NewMatchStore(),
		Signer:    signer,
		Retention: DefaultRetention,
		logger:    logger,
		ctx:       ctx,
		sessions:  make(map[uuid.UUID]*matchSession),
	}
}

// matchSession pairs a match with its two seats and their outgoing queues.
type matchSession struct {
	match  *game.Match
	seats  [2]*models.Seat
	outbox [2]chan []byte
	log    *logrus.Entry
}

// CreateMatchRequest is the body of POST /match/create. Each side uses its
// stored deck if DeckA/DeckB is set, else its card list, else the starter deck.
type CreateMatchRequest struct {
	DeckA    *uuid.UUID             `json:"deckA,omitempty"`
	DeckB    *uuid.UUID             `json:"deckB,omitempty"`
	CardsA   []string               `json:"cardsA,omitempty"`
	CardsB   []string               `json:"cardsB,omitempty"`
	UserA    *uuid.UUID             `json:"userA,omitempty"`
	UserB    *uuid.UUID             `json:"userB,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// SeatGrant is what a player needs to join a side.
type SeatGrant struct {
	Side   game.Side `json:"side"`
	UserID uuid.UUID `json:"userId"`
	Token  string    `json:"token"`
}

// CreateMatchResponse answers POST /match/create.
type CreateMatchResponse struct {
	MatchID  uuid.UUID     `json:"matchId"`
	Settings game.Settings `json:"settings"`
	Seats    [2]SeatGrant  `json:"seats"`
}

// ErrBadRequest wraps client mistakes in a create request.
var ErrBadRequest = errors.New("bad request")

func (s *MatchServer) resolveDeck(ctx context.Context, deckID *uuid.UUID, cards []string) ([]game.Card, error) {
	ids := cards
	if deckID != nil {
		if !s.Persist {
			return nil, fmt.Errorf("%w: stored decks need a database", ErrBadRequest)
		}
		d, err := database.GetDeck(ctx, *deckID)
		if errors.Is(err, database.ErrDeckNotFound) {
			return nil, fmt.Errorf("%w: deck %s not found", ErrBadRequest, deckID)
		}
		if err != nil {
			return nil, err
		}
		ids = d.Cards
	}
	if len(ids) == 0 {
		ids = catalog.StarterDeck()
	}
	deck, err := catalog.BuildDeck(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return deck, nil
}

// CreateMatch builds a match, starts it and returns the seat grants.
func (s *MatchServer) CreateMatch(ctx context.Context, req CreateMatchRequest) (*CreateMatchResponse, error) {
	settings, err := game.ParseSettings(req.Settings, game.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	deckA, err := s.resolveDeck(ctx, req.DeckA, req.CardsA)
	if err != nil {
		return nil, err
	}
	deckB, err := s.resolveDeck(ctx, req.DeckB, req.CardsB)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	m, err := game.NewMatch(deckA, deckB, settings,
		game.WithID(id),
		game.WithLogger(s.logger),
		game.WithSeedSecret(s.SeedSecret),
	)
	if err != nil {
		return nil, err
	}

	sess := &matchSession{
		match: m,
		log:   s.logger.WithField("match_id", id),
	}
	resp := &CreateMatchResponse{MatchID: id, Settings: settings}
	users := [2]*uuid.UUID{req.UserA, req.UserB}
	for _, side := range game.Sides {
		userID := uuid.New()
		if u := users[side]; u != nil {
			userID = *u
		}
		token, err := s.Signer.IssueSeat(id, userID, side.String())
		if err != nil {
			return nil, fmt.Errorf("issue seat token: %w", err)
		}
		sess.seats[side] = &models.Seat{Side: side.String(), UserID: userID}
		sess.outbox[side] = make(chan []byte, outboxSize)
		resp.Seats[side] = SeatGrant{Side: side, UserID: userID, Token: token}
	}

	m.BroadcastFn = sess.broadcast
	if s.Publisher != nil {
		m.ActionSink = s.Publisher.Sink
	}
	m.OnMatchEnd = func(res game.MatchResult) { s.matchEnded(sess, res) }

	if s.Persist {
		if err := s.persistNew(ctx, m, req, settings); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(s.ctx)
	s.Store.AddMatch(m, cancel)
	go func() {
		defer cancel()
		if err := m.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			sess.log.WithError(err).Error("match stopped with error")
		}
	}()

	sess.log.WithField("settings", settings).Info("match created")
	return resp, nil
}

func (s *MatchServer) persistNew(ctx context.Context, m *game.Match, req CreateMatchRequest, settings game.Settings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	initial, err := json.Marshal(m.State())
	if err != nil {
		return err
	}
	return database.CreateMatch(ctx, models.MatchRecord{
		ID:           m.ID,
		Status:       models.MatchInProgress,
		DeckA:        req.DeckA,
		DeckB:        req.DeckB,
		Seed:         game.DeriveSeed(m.ID, s.SeedSecret),
		Settings:     settingsJSON,
		InitialState: initial,
	})
}

// matchEnded runs on the match goroutine once the match stops.
func (s *MatchServer) matchEnded(sess *matchSession, res game.MatchResult) {
	if s.Persist {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var winner *string
		if res.Winner != nil {
			w := res.Winner.String()
			winner = &w
		}
		for _, t := range sess.match.History {
			if err := database.RecordTurn(ctx, res.MatchID, t.Number, t); err != nil {
				sess.log.WithError(err).Warn("failed to persist turn")
			}
		}
		if err := database.FinishMatch(ctx, res.MatchID, winner, res.Reason, sess.match.State()); err != nil {
			sess.log.WithError(err).Error("failed to persist match result")
		}
	}

	time.AfterFunc(s.Retention, func() { s.removeMatch(res.MatchID) })
}

func (s *MatchServer) removeMatch(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.Store.DeleteMatch(id)
}

func (s *MatchServer) session(id uuid.UUID) (*matchSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// authorize maps a seat token to a side of the match.
func (s *MatchServer) authorize(token string, matchID uuid.UUID) (game.Side, error) {
	if token == "" {
		return game.SideA, fmt.Errorf("missing seat token")
	}
	claims, err := s.Signer.VerifySeat(token, matchID)
	if err != nil {
		return game.SideA, err
	}
	return game.ParseSide(claims.Side)
}

// broadcast is the match's BroadcastFn. It runs on the match goroutine, so it
// only marshals and queues; the socket writers do the I/O.
func (sess *matchSession) broadcast(ev game.GameEvent) {
	for _, side := range game.Sides {
		if ev.Audience != nil && *ev.Audience != side {
			continue
		}
		out := ev
		if ev.State != nil {
			st := game.Redact(*ev.State, side)
			out.State = &st
		}
		data, err := json.Marshal(out)
		if err != nil {
			sess.log.WithError(err).WithField("type", ev.Type).Error("failed to marshal event")
			continue
		}
		sess.enqueue(side, data)
	}
}

func (sess *matchSession) enqueue(side game.Side, data []byte) {
	select {
	case sess.outbox[side] <- data:
	default:
		sess.log.WithField("side", side).Warn("outbox full; dropping event until the client resyncs")
	}
}

// drain discards queued events, used before a fresh sync.
func (sess *matchSession) drain(side game.Side) int {
	n := 0
	for {
		select {
		case <-sess.outbox[side]:
			n++
		default:
			return n
		}
	}
}

// internal/historian/historian.go pops match actions from the Redis queue and
// persists them to PostgreSQL in batches.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/config"
	"github.com/jason-s-yu/spellclash/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// popTimeout bounds each blocking pop so cancellation is noticed.
const popTimeout = 3 * time.Second

// Source yields action records. Pop returns nil, nil when nothing arrived in time.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*cache.MatchActionRecord, error)
}

// Store persists action batches.
type Store interface {
	InsertActions(ctx context.Context, batch []cache.MatchActionRecord) error
	MarkAbandoned(ctx context.Context, matchID uuid.UUID) (bool, error)
}

// RedisSource reads from the historian queue.
type RedisSource struct {
	Client *redis.Client
	Queue  string
}

func (r RedisSource) Pop(ctx context.Context, timeout time.Duration) (*cache.MatchActionRecord, error) {
	return cache.PopMatchAction(ctx, r.Client, r.Queue, timeout)
}

// PostgresStore writes through the global database pool.
type PostgresStore struct{}

func (PostgresStore) InsertActions(ctx context.Context, batch []cache.MatchActionRecord) error {
	return database.InsertActionsTx(ctx, batch)
}

func (PostgresStore) MarkAbandoned(ctx context.Context, matchID uuid.UUID) (bool, error) {
	return database.MarkMatchAbandoned(ctx, matchID)
}

// Service captures match actions and marks matches abandoned after a period
// without activity.
type Service struct {
	source     Source
	store      Store
	log        logrus.FieldLogger
	batchSize  int
	flushDelay time.Duration
	inactivity time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu           sync.Mutex
	batch        []cache.MatchActionRecord
	lastActivity map[uuid.UUID]time.Time
}

// NewService builds a historian from its configuration.
func NewService(cfg config.Historian, source Source, store Store, log logrus.FieldLogger) *Service {
	return &Service{
		source:       source,
		store:        store,
		log:          log,
		batchSize:    cfg.BatchSize,
		flushDelay:   cfg.FlushDelay,
		inactivity:   cfg.Inactivity,
		sweepEvery:   time.Minute,
		now:          time.Now,
		batch:        make([]cache.MatchActionRecord, 0, cfg.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is still batched.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("spellclash-historian service started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.flushLoop(gctx) })
	g.Go(func() error { return s.inactivityLoop(gctx) })
	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.log.Info("spellclash-historian shutting down")
	return err
}

func (s *Service) readLoop(ctx context.Context) error {
	for {
		rec, err := s.source.Pop(ctx, popTimeout)
		if rec != nil {
			s.add(ctx, *rec)
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			s.log.WithError(err).Error("failed to pop match action")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

// add batches rec, flushing once the batch is full.
func (s *Service) add(ctx context.Context, rec cache.MatchActionRecord) {
	s.mu.Lock()
	if rec.ActionType == "match_end" {
		delete(s.lastActivity, rec.MatchID)
	} else {
		s.lastActivity[rec.MatchID] = s.now()
	}
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.batchSize
	s.mu.Unlock()

	// a cancelled run leaves the batch for the final flush
	if full && ctx.Err() == nil {
		s.flush(ctx)
	}
}

func (s *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

// flush writes the current batch in one transaction.
func (s *Service) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return
	}
	pending := make([]cache.MatchActionRecord, len(s.batch))
	copy(pending, s.batch)
	s.batch = s.batch[:0]
	s.mu.Unlock()

	if err := s.store.InsertActions(ctx, pending); err != nil {
		s.log.WithError(err).WithField("count", len(pending)).Error("failed to flush actions")
		return
	}
	s.log.WithField("count", len(pending)).Debug("flushed actions")
}

func (s *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep marks matches with no recent actions as abandoned.
func (s *Service) sweep(ctx context.Context) {
	now := s.now()
	var stale []uuid.UUID
	s.mu.Lock()
	for id, last := range s.lastActivity {
		if now.Sub(last) > s.inactivity {
			stale = append(stale, id)
			delete(s.lastActivity, id)
		}
	}
	s.mu.Unlock()
	if len(stale) == 0 {
		return
	}

	// their last actions must land before the status changes
	s.flush(ctx)
	for _, id := range stale {
		marked, err := s.store.MarkAbandoned(ctx, id)
		entry := s.log.WithField("match_id", id)
		switch {
		case err != nil:
			entry.WithError(err).Error("failed to mark match abandoned")
		case marked:
			entry.Info("marked match abandoned due to inactivity")
		}
	}
}

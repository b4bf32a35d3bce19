// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSource chan cache.MatchActionRecord

func (c chanSource) Pop(ctx context.Context, timeout time.Duration) (*cache.MatchActionRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case rec := <-c:
		return &rec, nil
	case <-time.After(10 * time.Millisecond):
		return nil, nil
	}
}

type memStore struct {
	mu        sync.Mutex
	batches   [][]cache.MatchActionRecord
	abandoned []uuid.UUID
	failNext  bool
}

func (m *memStore) InsertActions(ctx context.Context, batch []cache.MatchActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("db down")
	}
	m.batches = append(m.batches, append([]cache.MatchActionRecord(nil), batch...))
	return nil
}

func (m *memStore) MarkAbandoned(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned = append(m.abandoned, id)
	return true, nil
}

func (m *memStore) stored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func newTestService(store *memStore, src Source) *Service {
	logger, _ := test.NewNullLogger()
	cfg := config.Historian{BatchSize: 3, FlushDelay: time.Hour, Inactivity: time.Minute}
	return NewService(cfg, src, store, logger)
}

func record(id uuid.UUID, idx int, kind string) cache.MatchActionRecord {
	return cache.MatchActionRecord{MatchID: id, ActionIndex: idx, ActionType: kind}
}

func TestFlushesWhenBatchFills(t *testing.T) {
	store := &memStore{}
	s := newTestService(store, nil)
	id := uuid.New()
	ctx := context.Background()

	s.add(ctx, record(id, 1, "match_start"))
	s.add(ctx, record(id, 2, "player_draw"))
	assert.Equal(t, 0, store.stored())

	s.add(ctx, record(id, 3, "player_draw"))
	require.Len(t, store.batches, 1)
	assert.Len(t, store.batches[0], 3)
	assert.Equal(t, 3, store.batches[0][2].ActionIndex)
}

func TestFailedFlushIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &memStore{failNext: true}
	s := NewService(config.Historian{BatchSize: 1, FlushDelay: time.Hour, Inactivity: time.Minute}, nil, store, logger)

	s.add(context.Background(), record(uuid.New(), 1, "match_start"))
	assert.Equal(t, 0, store.stored())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to flush actions", hook.LastEntry().Message)
}

func TestSweepMarksInactiveMatches(t *testing.T) {
	store := &memStore{}
	s := newTestService(store, nil)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	idle, finished, active := uuid.New(), uuid.New(), uuid.New()
	ctx := context.Background()
	s.add(ctx, record(idle, 1, "match_start"))
	s.add(ctx, record(finished, 1, "match_start"))
	s.add(ctx, record(finished, 2, "match_end"))

	clock = clock.Add(50 * time.Second)
	s.add(ctx, record(active, 1, "match_start"))

	clock = clock.Add(20 * time.Second)
	s.sweep(ctx)

	assert.Equal(t, []uuid.UUID{idle}, store.abandoned)
	assert.Equal(t, 4, store.stored())

	s.sweep(ctx)
	assert.Len(t, store.abandoned, 1)
}

func TestRunDrainsSourceAndFlushesOnStop(t *testing.T) {
	store := &memStore{}
	src := make(chanSource, 8)
	s := newTestService(store, src)
	id := uuid.New()
	for i := 1; i <= 5; i++ {
		src <- record(id, i, "player_draw")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(src) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 5, store.stored())
}

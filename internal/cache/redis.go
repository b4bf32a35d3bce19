// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/spellclash/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// MatchActionRecord holds the minimal info needed by the historian.
type MatchActionRecord struct {
	MatchID       uuid.UUID              `json:"match_id"`
	ActionIndex   int                    `json:"action_index"`
	Turn          int                    `json:"turn"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// PublishMatchAction serializes the record and pushes it to the queue.
func PublishMatchAction(ctx context.Context, rdb *redis.Client, queue string, record MatchActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchActionRecord: %w", err)
	}
	if err := rdb.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// PopMatchAction blocks up to timeout for the next record. It returns nil, nil
// when the wait times out.
func PopMatchAction(ctx context.Context, rdb *redis.Client, queue string, timeout time.Duration) (*MatchActionRecord, error) {
	res, err := rdb.BLPop(ctx, timeout, queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", queue, err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	var rec MatchActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &rec, nil
}

// Publisher forwards match actions to Redis from a single goroutine so records
// from one match keep their order. Matches hand records to Sink, which never
// blocks the match loop.
type Publisher struct {
	rdb     *redis.Client
	queue   string
	log     logrus.FieldLogger
	pending chan MatchActionRecord
}

// NewPublisher creates a publisher with room for buffer queued records.
func NewPublisher(rdb *redis.Client, queue string, buffer int, log logrus.FieldLogger) *Publisher {
	if buffer < 1 {
		buffer = 1
	}
	return &Publisher{
		rdb:     rdb,
		queue:   queue,
		log:     log,
		pending: make(chan MatchActionRecord, buffer),
	}
}

// Sink queues a record for publishing. When the buffer is full the record is
// dropped and logged.
func (p *Publisher) Sink(rec MatchActionRecord) {
	select {
	case p.pending <- rec:
	default:
		p.log.WithFields(logrus.Fields{
			"match_id":     rec.MatchID,
			"action_index": rec.ActionIndex,
			"action_type":  rec.ActionType,
		}).Warn("action queue full; dropping record")
	}
}

// Run publishes queued records until ctx is cancelled, then drains what is left.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case rec := <-p.pending:
			p.publish(ctx, rec)
		}
	}
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-p.pending:
			p.publish(ctx, rec)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, rec MatchActionRecord) {
	if err := PublishMatchAction(ctx, p.rdb, p.queue, rec); err != nil {
		p.log.WithError(err).WithField("match_id", rec.MatchID).Error("failed to publish match action")
	}
}

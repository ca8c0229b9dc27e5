package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"

	redis "github.com/redis/go-redis/v9"
)

var _ ports.ProgressReporter = (*RedisPublisher)(nil)

// Event is the payload published for every progress update.
type Event struct {
	RunID   string  `json:"run_id"`
	Percent float64 `json:"percent"`
}

// RedisPublisher streams run progress over Redis Pub/Sub and keeps the latest
// value of each run under a key, so late subscribers can catch up.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPublisher connects using a redis:// URL. prefix namespaces both the
// channel and the latest-value keys.
func NewRedisPublisher(url, prefix string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis progress publisher: parse url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opt), prefix), nil
}

func NewRedisPublisherFromClient(rdb *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "optimizer"
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix, ttl: time.Hour}
}

// Channel is the Pub/Sub channel for the run's progress events.
func (p *RedisPublisher) Channel(runID string) string { return p.prefix + ":progress:" + runID }

// LatestKey holds the most recent percentage for the run.
func (p *RedisPublisher) LatestKey(runID string) string { return p.prefix + ":progress:" + runID + ":latest" }

// ReportProgress publishes percent for the run id stored in ctx. Failures are
// logged and otherwise ignored.
func (p *RedisPublisher) ReportProgress(ctx context.Context, percent float64) {
	runID := obs.RequestID(ctx)
	if runID == "" {
		runID = "anonymous"
	}

	data, err := json.Marshal(Event{RunID: runID, Percent: percent})
	if err != nil {
		log.Printf("req_id=%s op=progress.publish err=%v", runID, err)
		return
	}

	// Progress must outlive a canceled run context, but never stall the solver.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	pipe := p.rdb.Pipeline()
	pipe.Set(pctx, p.LatestKey(runID), data, p.ttl)
	pipe.Publish(pctx, p.Channel(runID), data)
	if _, err := pipe.Exec(pctx); err != nil {
		log.Printf("req_id=%s op=progress.publish err=%v", runID, err)
	}
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }

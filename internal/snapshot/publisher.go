// Package snapshot publishes Housekeeper monitoring snapshots to an
// external sink for dashboards outside the process. It never reads
// matchmaking state back out of Redis and is never consulted by the
// core — doing so would violate the no-cross-process-state-sharing
// non-goal (spec.md §1, SPEC_FULL.md §4.9).
package snapshot

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pairsignal/internal/core"
	"pairsignal/internal/logging"
)

// RedisPublisher implements core.SnapshotSink over a Redis PUBLISH
// channel, using the teacher's Redis client library.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher dials addr (best-effort; connection errors only
// surface at publish time, same as the teacher's fire-and-forget Redis
// calls in markUserAvailable).
func NewRedisPublisher(addr, password, channel string) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisPublisher{client: client, channel: channel}
}

// Publish marshals snap to JSON and publishes it. Failures are logged,
// never propagated — telemetry loss must not affect matchmaking.
func (p *RedisPublisher) Publish(ctx context.Context, snap core.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logging.Warn("failed to marshal monitoring snapshot", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		logging.Warn("failed to publish monitoring snapshot", zap.Error(err))
	}
}

// Close releases the underlying Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Package redisdedup tracks which webhook event ids have already been
// processed, backed by Redis SETNX with a TTL.
package redisdedup

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/trainhub/session-booking/internal/webhooks"
)

const keyPrefix = "webhook:event:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// MarkSeen returns false when the event id was already recorded.
func (s *Store) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return s.rdb.SetNX(ctx, keyPrefix+eventID, 1, s.ttl).Result()
}

// Unmark removes an event id so a redelivery can be processed.
func (s *Store) Unmark(ctx context.Context, eventID string) error {
	return s.rdb.Del(ctx, keyPrefix+eventID).Err()
}

// Compile-time check
var _ webhooks.EventStore = (*Store)(nil)

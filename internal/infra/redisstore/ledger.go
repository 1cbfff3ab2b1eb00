package redisstore

import (
	"context"
	"fmt"

	"appointment_notifier/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

// processedKeyPrefix namespaces ledger keys in a shared redis instance.
const processedKeyPrefix = "notifier:processed:"

// RedisLedger is a redis-backed processed-event store for deployments
// without postgres. Entries carry no TTL: the ledger is append-only and
// only an explicit administrative reset removes keys.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Contains(ctx context.Context, key event.Key) (bool, error) {
	n, err := l.client.Exists(ctx, processedKeyPrefix+key.String()).Result()
	if err != nil {
		return false, fmt.Errorf("error checking processed event %s: %w", key, err)
	}
	return n > 0, nil
}

func (l *RedisLedger) Record(ctx context.Context, key event.Key) error {
	// SETNX keeps Record idempotent: re-recording an existing key is a no-op.
	if err := l.client.SetNX(ctx, processedKeyPrefix+key.String(), string(key.Kind), 0).Err(); err != nil {
		return fmt.Errorf("error recording processed event %s: %w", key, err)
	}
	return nil
}

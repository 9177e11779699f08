package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	fulfillmentapp "github.com/olafkfreund/tshop-sub002/internal/application/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/config"
)

// RedisWebhookDeduper remembers consumed webhook event IDs in Redis so
// replayed deliveries are dropped across all instances. Entries expire after
// the TTL; providers stop retrying an acknowledged event long before that.
type RedisWebhookDeduper struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisWebhookDeduper creates a deduper with its own Redis connection
func NewRedisWebhookDeduper(cfg *config.RedisConfig, ttl time.Duration) (*RedisWebhookDeduper, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWebhookDeduperWithClient(client, "", ttl), nil
}

// NewRedisWebhookDeduperWithClient creates a deduper with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisWebhookDeduperWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisWebhookDeduper {
	if keyPrefix == "" {
		keyPrefix = "webhook:event:"
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisWebhookDeduper{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

var _ fulfillmentapp.EventDeduper = (*RedisWebhookDeduper)(nil)

// MarkConsumed records the event ID atomically via SETNX and reports whether
// this was the first delivery
func (d *RedisWebhookDeduper) MarkConsumed(ctx context.Context, provider fulfillment.ProviderCode, eventID string) (bool, error) {
	key := d.keyPrefix + provider.String() + ":" + eventID

	first, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark webhook event as consumed: %w", err)
	}
	return first, nil
}

// Close closes the Redis client
func (d *RedisWebhookDeduper) Close() error {
	return d.client.Close()
}

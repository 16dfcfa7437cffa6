package redislock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker implements interfaces.SettlementLocker on Redis SET NX. The lock is
// advisory: it expires on its own, so a crashed holder never wedges a payment.
type Locker struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client) *Locker {
	return &Locker{client: client, prefix: "settlement_lock:"}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+key, "1", ttl).Result()
}

func (l *Locker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

package interfaces

import (
	"context"
	"time"
)

// SettlementLocker serializes settlement attempts for one gateway payment id
// across instances. It is defense in depth in front of the storage unique
// constraint, which remains the hard guarantee.
type SettlementLocker interface {
	// Acquire returns false when another instance holds the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// internal/database/lock_manager.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockPollInterval = 100 * time.Millisecond

// LockManager holds per-entity advisory locks for the duration of one
// request. Locks are SETNX keys with a TTL that bounds the worst-case
// holder after a crash. A LockManager is request-scoped and not safe
// for concurrent use.
type LockManager struct {
	rdb  redis.Cmdable
	ttl  time.Duration
	held []string
}

func NewLockManager(rdb redis.Cmdable, ttl time.Duration) *LockManager {
	return &LockManager{rdb: rdb, ttl: ttl}
}

// Acquire blocks until the lock is owned by this request or the
// current holder's TTL expires. Re-acquiring a held lock is a no-op,
// so a processor may load the same entity twice.
func (m *LockManager) Acquire(ctx context.Context, lockID string) error {
	name := "locks:" + lockID
	for _, h := range m.held {
		if h == name {
			return nil
		}
	}

	for {
		ok, err := m.rdb.SetNX(ctx, name, "", m.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %q: %w", name, err)
		}
		if ok {
			m.held = append(m.held, name)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// ReleaseAll drops every lock acquired in this request. Called exactly
// once per commit and once per abort.
func (m *LockManager) ReleaseAll(ctx context.Context) error {
	if len(m.held) == 0 {
		return nil
	}
	held := m.held
	m.held = nil
	if err := m.rdb.Del(ctx, held...).Err(); err != nil {
		return fmt.Errorf("release locks: %w", err)
	}
	return nil
}

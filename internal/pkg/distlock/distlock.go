package distlock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock without blocking. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Extender is implemented by locks that expire unless their holder renews
// them.
type Extender interface {
	Extend(ctx context.Context, ttl time.Duration) error
}

// Factory hands out locks on the best available backend: Redis when a
// client is configured, PostgreSQL advisory locks when only a database is,
// and an in-process lock otherwise.
type Factory struct {
	redis *redis.Client
	db    *sql.DB
	ttl   time.Duration
	local *localLocks
}

// NewFactory creates a lock factory. Either client may be nil.
func NewFactory(redisClient *redis.Client, db *sql.DB, ttl time.Duration) *Factory {
	return &Factory{redis: redisClient, db: db, ttl: ttl, local: &localLocks{held: map[string]bool{}}}
}

// NewLock returns a fresh lock for key.
func (f *Factory) NewLock(key string) DistLock {
	switch {
	case f.redis != nil:
		return NewRedisLock(f.redis, key, f.ttl)
	case f.db != nil:
		return NewPGAdvisoryLock(f.db, key)
	}
	return &LocalLock{locks: f.local, key: key}
}

// KeepAlive renews l every half TTL until the returned stop func is called.
// Locks that do not expire are left alone. A failed renewal is passed to
// onLost and ends the renewals.
func (f *Factory) KeepAlive(ctx context.Context, l DistLock, onLost func(error)) (stop func()) {
	ext, ok := l.(Extender)
	if !ok || f.ttl <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(f.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ext.Extend(ctx, f.ttl); err != nil {
					if ctx.Err() == nil && onLost != nil {
						onLost(err)
					}
					return
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// =============================================================================
// PostgreSQL Advisory Lock (fallback when Redis is unavailable)
// =============================================================================
// pg_try_advisory_lock is session-scoped, so the lock pins one pooled
// connection from Acquire until Release. The lock is released by the server
// if that connection drops.

// PGAdvisoryLock implements DistLock using PostgreSQL advisory locks.
type PGAdvisoryLock struct {
	db     *sql.DB
	conn   *sql.Conn
	lockID int64
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to acquire the advisory lock. Returns true if successful.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("advisory lock conn: %w", err)
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("advisory lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release releases the advisory lock and returns its connection to the pool.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Close()
		l.conn = nil
	}()
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	return err
}

// =============================================================================
// In-process lock (single binary without Redis or a database)
// =============================================================================

type localLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

// LocalLock implements DistLock within one process.
type LocalLock struct {
	locks *localLocks
	key   string
	owned bool
}

// Acquire takes the key if no other LocalLock from the same factory holds it.
func (l *LocalLock) Acquire(_ context.Context) (bool, error) {
	l.locks.mu.Lock()
	defer l.locks.mu.Unlock()
	if l.locks.held[l.key] {
		return false, nil
	}
	l.locks.held[l.key] = true
	l.owned = true
	return true, nil
}

// Release frees the key if this lock holds it.
func (l *LocalLock) Release(_ context.Context) error {
	l.locks.mu.Lock()
	defer l.locks.mu.Unlock()
	if l.owned {
		delete(l.locks.held, l.key)
		l.owned = false
	}
	return nil
}

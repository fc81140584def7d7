package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockManager serializes filter list writes between server instances that
// share one database, using PostgreSQL advisory locks.
type LockManager struct {
	pool *pgxpool.Pool
}

func NewLockManager(pool *pgxpool.Pool) *LockManager { return &LockManager{pool: pool} }

// lockKey maps a script name to an advisory lock id.
func lockKey(name string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte("filter_script:" + name))
	return int64(h.Sum32())
}

// Acquire blocks until the lock for name is held and returns its release func.
func (l *LockManager) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	k := lockKey(name)
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock %s: %w", name, err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", k); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return func(c context.Context) error {
		defer conn.Release()
		if _, err := conn.Exec(c, "SELECT pg_advisory_unlock($1)", k); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}
		return nil
	}, nil
}

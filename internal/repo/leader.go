package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaderLock — advisory lock в Postgres для выбора активного dispatcher.
//
// Advisory lock привязан к сессии, поэтому LeaderLock удерживает
// выделенное соединение из пула на всё время лидерства. Падение
// процесса рвёт соединение, и лок освобождается сам.
type LeaderLock struct {
	pool *pgxpool.Pool
	key  int64
	conn *pgxpool.Conn
}

// NewLeaderLock создаёт LeaderLock с указанным ключом.
// Все экземпляры одного сервиса должны использовать один ключ.
func NewLeaderLock(pool *pgxpool.Pool, key int64) *LeaderLock {
	return &LeaderLock{pool: pool, key: key}
}

// TryAcquire пытается захватить лидерство. Не блокируется:
// возвращает false, если лок уже у другого экземпляра.
func (l *LeaderLock) TryAcquire(ctx context.Context) (bool, error) {
	if l.conn != nil {
		return true, nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&acquired); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

// Release освобождает лидерство и возвращает соединение в пул.
func (l *LeaderLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}

	_, err := l.conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, l.key)
	l.conn.Release()
	l.conn = nil

	if err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}

// IsLeader сообщает, удерживается ли лок этим экземпляром.
func (l *LeaderLock) IsLeader() bool {
	return l.conn != nil
}

// Package ratelimit counts attempts per identifier in fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Store counts attempts per key. A window starts at the first attempt and
// the count restarts at 1 once more than window has passed since then.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

// NewStore picks a store by configured kind: memory, sql or none.
func NewStore(kind string, db *sqlx.DB) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "sql":
		if db == nil {
			return nil, errors.New("sql rate limit store needs a database")
		}
		return NewSQLStore(db), nil
	case "none":
		return NoopStore{}, nil
	}
	return nil, errors.Errorf("unknown rate limit store %q", kind)
}

type counter struct {
	count int
	start time.Time
}

// MemoryStore keeps counters in process memory. Counters are not shared
// between instances.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: map[string]counter{}, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok || now.Sub(c.start) > window {
		c = counter{start: now}
	}
	c.count++
	s.counters[key] = c
	return c.count, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.counters, key)
	s.mu.Unlock()
	return nil
}

// SQLStore keeps counters in the rate_limits table.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db, now: time.Now} }

func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	s.now = now
	return s
}

func (s *SQLStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	now := s.now().UnixMilli()
	var n int
	// SET expressions read the pre-update row.
	err := s.db.GetContext(ctx, &n, `
		INSERT INTO rate_limits(bucket, count, window_start_ms) VALUES(?, 1, ?)
		ON CONFLICT(bucket) DO UPDATE SET
		  count = CASE WHEN ? - window_start_ms > ? THEN 1 ELSE count + 1 END,
		  window_start_ms = CASE WHEN ? - window_start_ms > ? THEN ? ELSE window_start_ms END
		RETURNING count`,
		key, now, now, window.Milliseconds(), now, window.Milliseconds(), now)
	if err != nil {
		return 0, errors.Wrapf(err, "increment %s", key)
	}
	return n, nil
}

func (s *SQLStore) Reset(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE bucket = ?`, key)
	return errors.Wrapf(err, "reset %s", key)
}

// NoopStore never limits.
type NoopStore struct{}

func (NoopStore) Increment(context.Context, string, time.Duration) (int, error) { return 1, nil }
func (NoopStore) Reset(context.Context, string) error                         { return nil }

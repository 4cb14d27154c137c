package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Limiter allows at most Max attempts per identifier within Window.
type Limiter struct {
	Store  Store
	Max    int
	Window time.Duration
	Prefix string
}

func (l *Limiter) key(id string) string {
	return l.Prefix + ":" + strings.ToLower(strings.TrimSpace(id))
}

// Allow records an attempt and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, id string) (bool, error) {
	n, err := l.Store.Increment(ctx, l.key(id), l.Window)
	if err != nil {
		return false, err
	}
	return n <= l.Max, nil
}

// Clear forgets the attempts of id, e.g. after a successful login.
func (l *Limiter) Clear(ctx context.Context, id string) error {
	return l.Store.Reset(ctx, l.key(id))
}

package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when no value is cached.
var ErrMiss = errors.New("cache miss")

// UnreadCounter caches per-user unread notification counts. Implementations
// must be safe for concurrent use. Errors are advisory: callers fall back to
// the store.
//
// Every Invalidate bumps the user's generation. A reader takes Generation
// before counting in the store and passes it to Set, which stores nothing if
// an invalidation happened in between.
type UnreadCounter interface {
	Get(ctx context.Context, userID string) (int64, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, generation, count int64) error
	Invalidate(ctx context.Context, userID string) error
	Close() error
}

// Noop caches nothing. Used when Redis is not configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Get(context.Context, string) (int64, error) { return 0, ErrMiss }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Set(context.Context, string, int64, int64) error { return nil }
func (Noop) Invalidate(context.Context, string) error { return nil }
func (Noop) Close() error { return nil }

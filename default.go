package injector

import (
	"context"
	"sync/atomic"
)

// defaultContainer holds the process-wide Container.
var defaultContainer atomic.Pointer[Container]

// SetDefault sets the container returned by Default.
// This is similar to slog.SetDefault. Pass nil to reset it; the next call
// to Default then creates a fresh container.
func SetDefault(c *Container) {
	defaultContainer.Store(c)
}

// Default returns the process-wide container, creating it on first use.
func Default() *Container {
	if c := defaultContainer.Load(); c != nil {
		return c
	}

	defaultContainer.CompareAndSwap(nil, New())
	return defaultContainer.Load()
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the container carried by ctx.
func FromContext(ctx context.Context) (*Container, error) {
	if ctx == nil {
		return nil, ErrNoContainer
	}

	c, ok := ctx.Value(contextKey{}).(*Container)
	if !ok || c == nil {
		return nil, ErrNoContainer
	}

	return c, nil
}

package ratelimit

import (
	"context"
	"sync"
)

type limiterKey struct{}

// NewContext returns a copy of ctx carrying l. The client waits on it before
// every request it sends to the service.
func NewContext(ctx context.Context, l Limiter) context.Context {
	return context.WithValue(ctx, limiterKey{}, l)
}

// FromContext returns the Limiter stored in ctx, if any.
func FromContext(ctx context.Context) (Limiter, bool) {
	l, ok := ctx.Value(limiterKey{}).(Limiter)
	return l, ok && l != nil
}

// primed lets the first Wait through and delegates every later one.
type primed struct {
	mu     sync.Mutex
	used   bool
	parent Limiter
}

// Primed wraps l for a caller that has just waited on it: the first Wait
// returns at once, later calls wait on l.
func Primed(l Limiter) Limiter {
	return &primed{parent: l}
}

func (p *primed) Wait(ctx context.Context) error {
	p.mu.Lock()
	first := !p.used
	p.used = true
	p.mu.Unlock()
	if first {
		return ctx.Err()
	}
	return p.parent.Wait(ctx)
}

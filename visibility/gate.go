// Package visibility gates background fetch loops on host application
// visibility. Loops suspend entirely, not merely slow down, while the
// application has not been visible recently, and resume as soon as
// visibility returns.
package visibility

import (
	"context"
	"sync"
	"time"
)

// DefaultGrace is how long after the application is hidden fetch loops
// keep running before suspending.
const DefaultGrace = 10 * time.Second

// Gate tracks visibility state. The zero value is not usable; use New.
type Gate struct {
	mu       sync.Mutex
	visible  bool
	hiddenAt time.Time
	grace    time.Duration
	now      func() time.Time
	waiters  []chan struct{}
}

// New creates a gate that starts visible.
func New(grace time.Duration, now func() time.Time) *Gate {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{visible: true, grace: grace, now: now}
}

// SetVisible records a visibility change. Turning visible wakes every
// loop blocked in AwaitVisible.
func (g *Gate) SetVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if visible == g.visible {
		return
	}
	g.visible = visible
	if visible {
		for _, ch := range g.waiters {
			close(ch)
		}
		g.waiters = nil
	} else {
		g.hiddenAt = g.now()
	}
}

// ShouldFetch reports whether loops may fetch right now: the application
// is visible, or was visible within the grace window.
func (g *Gate) ShouldFetch() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.visible {
		return true
	}
	return g.now().Sub(g.hiddenAt) < g.grace
}

// AwaitVisible blocks until the gate is visible or ctx is done.
func (g *Gate) AwaitVisible(ctx context.Context) error {
	g.mu.Lock()
	if g.visible {
		g.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

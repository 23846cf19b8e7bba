// Package ratelimit enforces the global correction cooldown.
//
// Applied corrections across all concurrent per-word tasks share one
// [Guard]: after a correction is injected, every further correction is
// suppressed until the cooldown elapses. Suppression is silent drop, never
// queueing — a delayed correction applied after the user typed past it would
// land in the wrong place.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the minimum interval between applied corrections.
const DefaultCooldown = 500 * time.Millisecond

// Option is a functional option for configuring a [Guard].
type Option func(*Guard)

// WithClock injects the time source, for tests with a simulated clock.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// Guard is a global cooldown gate. Safe for concurrent use.
type Guard struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates a Guard with the given cooldown. A non-positive cooldown
// falls back to [DefaultCooldown].
func New(cooldown time.Duration, opts ...Option) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	g := &Guard{
		limiter: rate.NewLimiter(rate.Every(cooldown), 1),
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Allow reports whether a correction may be applied now, consuming the
// cooldown slot when it may. Callers that receive false must drop the
// correction.
func (g *Guard) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limiter.AllowN(g.now(), 1)
}

// SetCooldown updates the cooldown interval. Takes effect immediately;
// an in-flight cooldown is re-timed at the new rate.
func (g *Guard) SetCooldown(cooldown time.Duration) {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limiter.SetLimitAt(g.now(), rate.Every(cooldown))
}

package ratelimiter

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter checks whether a key may spend tokens.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// Limiter keeps one token bucket per key in memory.
type Limiter struct {
	mu      sync.RWMutex
	entries map[string]*entry

	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a Limiter refilling cfg.Rate tokens per second up to
// cfg.Burst.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if cfg.Rate <= 0 || math.IsInf(cfg.Rate, 0) || math.IsNaN(cfg.Rate) {
		return nil, fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidConfig, cfg.Rate)
	}
	if cfg.Burst <= 0 {
		return nil, fmt.Errorf("%w: burst must be positive, got %d", ErrInvalidConfig, cfg.Burst)
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(cfg.Rate),
		burst:   cfg.Burst,
		idle:    cfg.IdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow spends one token of key.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN spends n tokens of key if available.
func (l *Limiter) AllowN(_ context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidTokenCount, n)
	}
	if n > l.burst {
		return nil, fmt.Errorf("%w: %d exceeds burst %d", ErrInvalidTokenCount, n, l.burst)
	}

	now := l.now()
	e := l.get(key, now)
	allowed := e.limiter.AllowN(now, n)
	tokens := e.limiter.TokensAt(now)

	res := &Result{
		Limit:     l.burst,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetAt:   now.Add(l.refill(float64(l.burst) - tokens)),
		allowed:   allowed,
	}
	if !allowed {
		res.Retry = l.refill(float64(n) - tokens)
	}
	return res, nil
}

// Reset forgets the bucket of key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Cleanup drops buckets idle for longer than the configured IdleTTL and
// returns how many were dropped.
func (l *Limiter) Cleanup() int {
	if l.idle <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.idle).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Load() < cutoff {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func (l *Limiter) get(key string, now time.Time) *entry {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if e, ok = l.entries[key]; !ok {
			e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
			l.entries[key] = e
		}
		l.mu.Unlock()
	}
	e.lastSeen.Store(now.UnixNano())
	return e
}

func (l *Limiter) refill(tokens float64) time.Duration {
	if tokens <= 0 {
		return 0
	}
	return time.Duration(tokens / float64(l.limit) * float64(time.Second))
}

// Package ratelimiter limits request rates per key with token buckets
// from golang.org/x/time/rate.
//
// A Limiter keeps one bucket per key in memory and drops buckets that have
// been idle for Config.IdleTTL when Cleanup (or Run) is called.
//
//	rl, err := ratelimiter.New(ratelimiter.Config{Rate: 50, Burst: 100, IdleTTL: 10 * time.Minute})
//	go rl.Run(ctx, time.Minute)
//
// Middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited response and answers 429 with
// Retry-After once a key is exhausted. Mounted after the tenant
// middleware, TenantKey gives every tenant its own budget:
//
//	r.Use(ratelimiter.Middleware(rl, ratelimiter.Composite(ratelimiter.TenantKey)))
package ratelimiter

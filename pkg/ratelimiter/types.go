package ratelimiter

import "time"

// Result is the outcome of a rate limit check.
type Result struct {
	Limit     int       // burst size
	Remaining int       // whole tokens left after the check
	ResetAt   time.Time // when the bucket is full again
	Retry     time.Duration

	allowed bool
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter returns how long to wait before retrying; zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.allowed {
		return 0
	}
	return r.Retry
}

// Config sets the per-key rate.
type Config struct {
	Rate    float64       `env:"TENANT_RATE_LIMIT" envDefault:"50"`     // requests per second
	Burst   int           `env:"TENANT_RATE_BURST" envDefault:"100"`    // bucket size
	IdleTTL time.Duration `env:"TENANT_RATE_IDLE_TTL" envDefault:"10m"` // limiters unused this long are dropped
}

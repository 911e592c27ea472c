package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the request and response header carrying the id.
const Header = "X-Request-ID"

const maxIDLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type config struct {
	header   string
	generate func() string
	trust    bool
}

// Option configures the middleware.
type Option func(*config)

// WithHeader overrides the header name.
func WithHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.header = name
		}
	}
}

// WithGenerator overrides the id generator (UUIDv7 by default).
func WithGenerator(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.generate = fn
		}
	}
}

// WithoutClientIDs ignores ids supplied by clients.
func WithoutClientIDs() Option {
	return func(c *config) { c.trust = false }
}

// New returns middleware that attaches a request id to every request and
// echoes it in the response. A well-formed client id is reused.
func New(opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{header: Header, generate: newID, trust: true}
	for _, opt := range opts {
		opt(cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(cfg.header)
			if !cfg.trust || !valid(id) {
				id = cfg.generate()
			}
			w.Header().Set(cfg.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

// Middleware is New with default options.
func Middleware(next http.Handler) http.Handler {
	return New()(next)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}

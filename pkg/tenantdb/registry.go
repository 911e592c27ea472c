package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/webix/udirdlaga/pkg/logger"
)

// defaultFlightKey never collides with a tenant key because tenant keys
// are at least MinKeyLength characters long.
const defaultFlightKey = ""

// Invalidator is notified synchronously whenever the registry drops a
// tenant connection.
type Invalidator interface {
	Invalidate(key string)
	InvalidateAll()
}

// Registry owns the control-plane connection and one connection per
// tenant key. It is safe for concurrent use.
type Registry struct {
	opener        Opener
	defaultOpener Opener
	defaultDB     string
	prefix        string
	openTimeout   time.Duration
	logger        *slog.Logger
	metrics       *Metrics

	group      singleflight.Group
	generation atomic.Uint64

	mu           sync.RWMutex
	epoch        uint64 // bumped by CloseAll
	conns        map[string]*Connection
	def          *Connection
	invalidators []Invalidator
}

// Option configures a Registry.
type Option func(*Registry)

// WithPrefix sets the tenant database name prefix.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithOpenTimeout bounds a single open. Zero disables the bound.
func WithOpenTimeout(d time.Duration) Option {
	return func(r *Registry) { r.openTimeout = d }
}

// WithDefaultOpener uses a separate opener for the control-plane database.
func WithDefaultOpener(o Opener) Option {
	return func(r *Registry) { r.defaultOpener = o }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables lifecycle metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithConfig applies Config values.
func WithConfig(cfg Config) Option {
	return func(r *Registry) {
		WithPrefix(cfg.Prefix)(r)
		r.openTimeout = cfg.OpenTimeout
	}
}

// NewRegistry creates a registry. defaultDB names the control-plane
// database, which is never derived from a tenant key.
func NewRegistry(opener Opener, defaultDB string, opts ...Option) *Registry {
	r := &Registry{
		opener:    opener,
		defaultDB: defaultDB,
		prefix:    "webix",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		conns:     make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.defaultOpener == nil {
		r.defaultOpener = r.opener
	}
	return r
}

// Attach registers an invalidator. Binders attach themselves on creation.
func (r *Registry) Attach(inv Invalidator) {
	r.mu.Lock()
	r.invalidators = append(r.invalidators, inv)
	r.mu.Unlock()
}

// DatabaseName returns the tenant database name for a raw key.
func (r *Registry) DatabaseName(raw string) (string, error) {
	key, err := ParseKey(raw)
	if err != nil {
		return "", err
	}
	return DatabaseName(r.prefix, key), nil
}

// EnsureDefault opens the control-plane connection once and returns it
// on every later call.
func (r *Registry) EnsureDefault(ctx context.Context) (*Connection, error) {
	if c, ok := r.Default(); ok {
		return c, nil
	}
	return r.await(ctx, defaultFlightKey, func(octx context.Context) (*Connection, error) {
		if c, ok := r.Default(); ok {
			return c, nil
		}
		epoch := r.currentEpoch()
		conn, err := r.open(octx, r.defaultOpener, "", r.defaultDB)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.epoch != epoch {
			r.mu.Unlock()
			return nil, r.discard(octx, conn)
		}
		r.def = conn
		r.mu.Unlock()
		r.logger.InfoContext(octx, "control-plane database connected", logger.Database(conn.database))
		return conn, nil
	})
}

// Default returns the control-plane connection if it is open.
func (r *Registry) Default() (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def, r.def != nil
}

// EnsureTenant returns the live connection for key, opening it on first
// use. Concurrent callers for the same key share one open. A failed open
// records nothing, so the next call retries from scratch.
//
// The open runs detached from ctx cancellation: a caller that gives up
// stops waiting but does not abort an open other callers may be sharing.
func (r *Registry) EnsureTenant(ctx context.Context, raw string) (*Connection, error) {
	key, err := ParseKey(raw)
	if err != nil {
		return nil, err
	}
	if c, ok := r.lookup(key); ok {
		return c, nil
	}
	return r.await(ctx, key, func(octx context.Context) (*Connection, error) {
		// Another flight may have finished between lookup and Do.
		if c, ok := r.lookup(key); ok {
			return c, nil
		}
		epoch := r.currentEpoch()
		start := time.Now()
		conn, err := r.open(octx, r.opener, key, DatabaseName(r.prefix, key))
		r.metrics.opened(start, err)
		if err != nil {
			r.logger.ErrorContext(octx, "tenant database open failed",
				logger.TenantKey(key), logger.Error(err))
			return nil, err
		}
		r.mu.Lock()
		if r.epoch != epoch {
			r.mu.Unlock()
			r.metrics.closed(1)
			return nil, r.discard(octx, conn)
		}
		r.conns[key] = conn
		r.mu.Unlock()
		r.logger.InfoContext(octx, "tenant database connected",
			logger.TenantKey(key),
			logger.Group("connection",
				logger.Database(conn.database),
				slog.Uint64("generation", conn.generation),
				logger.Duration(time.Since(start)),
			))
		return conn, nil
	})
}

// Tenant looks up a live connection without opening one.
func (r *Registry) Tenant(raw string) (*Connection, bool) {
	key, err := ParseKey(raw)
	if err != nil {
		return nil, false
	}
	return r.lookup(key)
}

// Keys returns the keys with a live connection, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.conns))
}

// Len returns the number of live tenant connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseTenant evicts and closes the connection for key. Model bindings
// for key are invalidated before it returns. Absent keys are a no-op.
func (r *Registry) CloseTenant(ctx context.Context, raw string) error {
	key, err := ParseKey(raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	conn, ok := r.conns[key]
	if ok {
		delete(r.conns, key)
	}
	invalidators := slices.Clone(r.invalidators)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	for _, inv := range invalidators {
		inv.Invalidate(key)
	}
	r.metrics.closed(1)

	if err := conn.handle.Close(ctx); err != nil {
		return fmt.Errorf("close tenant database %s: %w", conn.database, err)
	}
	r.logger.InfoContext(ctx, "tenant database closed", logger.TenantKey(key), logger.Database(conn.database))
	return nil
}

// CloseAll closes every tenant connection and the control-plane
// connection. Every close is attempted; failures are joined.
//
// Opens still in flight when CloseAll runs are not kept: they close their
// handle on completion and fail with ErrRegistryClosed.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	r.epoch++
	conns := r.conns
	r.conns = make(map[string]*Connection)
	def := r.def
	r.def = nil
	invalidators := slices.Clone(r.invalidators)
	r.mu.Unlock()

	for _, inv := range invalidators {
		inv.InvalidateAll()
	}
	r.metrics.closed(len(conns))

	var errs []error
	for _, key := range slices.Sorted(maps.Keys(conns)) {
		conn := conns[key]
		if err := conn.handle.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close tenant database %s: %w", conn.database, err))
		}
	}
	if def != nil {
		if err := def.handle.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close control-plane database %s: %w", def.database, err))
		}
	}

	if len(errs) > 0 {
		r.logger.ErrorContext(ctx, "database connections closed with errors",
			slog.Int("tenants", len(conns)), logger.Errors(errs...))
		return errors.Join(errs...)
	}
	r.logger.InfoContext(ctx, "all database connections closed", slog.Int("tenants", len(conns)))
	return nil
}

func (r *Registry) currentEpoch() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.epoch
}

// discard closes a handle opened across a CloseAll.
func (r *Registry) discard(ctx context.Context, conn *Connection) error {
	r.logger.WarnContext(ctx, "database opened after close, discarding",
		logger.TenantKey(conn.key), logger.Database(conn.database))
	if err := conn.handle.Close(ctx); err != nil {
		return errors.Join(ErrRegistryClosed, fmt.Errorf("close database %s: %w", conn.database, err))
	}
	return ErrRegistryClosed
}

func (r *Registry) lookup(key string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[key]
	return c, ok
}

// await runs fn at most once per key among concurrent callers and waits
// for its result or for ctx to be done, whichever comes first.
func (r *Registry) await(ctx context.Context, key string, fn func(context.Context) (*Connection, error)) (*Connection, error) {
	ch := r.group.DoChan(key, func() (any, error) {
		octx := context.WithoutCancel(ctx)
		if r.openTimeout > 0 {
			var cancel context.CancelFunc
			octx, cancel = context.WithTimeout(octx, r.openTimeout)
			defer cancel()
		}
		return fn(octx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Connection), nil
	}
}

func (r *Registry) open(ctx context.Context, opener Opener, key, database string) (*Connection, error) {
	handle, err := opener.Open(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("%w: database %q: %w", ErrConnection, database, err)
	}
	return &Connection{
		key:        key,
		database:   database,
		generation: r.generation.Add(1),
		openedAt:   time.Now(),
		handle:     handle,
	}, nil
}

package tenantdb

import (
	"fmt"
	"sync"
)

// ModelFactory builds the data-access objects for one connection.
// It must not perform I/O.
type ModelFactory[M any] func(conn *Connection) (M, error)

type binding[M any] struct {
	models     M
	generation uint64
}

// Binder caches one model set per tenant key. Bindings are tied to the
// generation of the connection they were built from, so a model set is
// never served for a connection other than the registry's current one.
type Binder[M any] struct {
	registry *Registry
	factory  ModelFactory[M]

	mu       sync.RWMutex
	bindings map[string]binding[M]
}

// NewBinder creates a binder and attaches it to the registry so that
// closing a connection evicts its models.
func NewBinder[M any](registry *Registry, factory ModelFactory[M]) *Binder[M] {
	b := &Binder[M]{
		registry: registry,
		factory:  factory,
		bindings: make(map[string]binding[M]),
	}
	registry.Attach(b)
	return b
}

// Models returns the model set for key. It only looks connections up and
// fails with ErrNoConnection if none is open; opening is the caller's job.
func (b *Binder[M]) Models(raw string) (M, error) {
	var zero M

	key, err := ParseKey(raw)
	if err != nil {
		return zero, err
	}
	conn, ok := b.registry.Tenant(key)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoConnection, key)
	}

	b.mu.RLock()
	bd, ok := b.bindings[key]
	b.mu.RUnlock()
	if ok && bd.generation == conn.Generation() {
		return bd.models, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if bd, ok := b.bindings[key]; ok && bd.generation == conn.Generation() {
		return bd.models, nil
	}
	models, err := b.factory(conn)
	if err != nil {
		return zero, fmt.Errorf("bind models for %s: %w", key, err)
	}
	b.bindings[key] = binding[M]{models: models, generation: conn.Generation()}
	return models, nil
}

// Invalidate evicts the model set for key.
func (b *Binder[M]) Invalidate(key string) {
	b.mu.Lock()
	delete(b.bindings, key)
	b.mu.Unlock()
}

// InvalidateAll evicts every model set.
func (b *Binder[M]) InvalidateAll() {
	b.mu.Lock()
	clear(b.bindings)
	b.mu.Unlock()
}

// Len returns the number of cached model sets.
func (b *Binder[M]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bindings)
}

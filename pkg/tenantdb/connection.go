package tenantdb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Handle is a live connection to one logical database.
type Handle interface {
	Database() *mongo.Database
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Opener opens a logical database by name on the configured server.
type Opener interface {
	Open(ctx context.Context, database string) (Handle, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, database string) (Handle, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, database string) (Handle, error) {
	return f(ctx, database)
}

// Connection is a registry-owned database connection.
// The control-plane connection has an empty Key.
type Connection struct {
	key        string
	database   string
	generation uint64
	openedAt   time.Time
	handle     Handle
}

// Key returns the normalized tenant key.
func (c *Connection) Key() string { return c.key }

// DatabaseName returns the logical database name, e.g. "webix_acme".
func (c *Connection) DatabaseName() string { return c.database }

// Generation is unique for every connection the registry ever opened.
// A connection reopened after a close always has a higher generation.
func (c *Connection) Generation() uint64 { return c.generation }

// OpenedAt reports when the connection was established.
func (c *Connection) OpenedAt() time.Time { return c.openedAt }

// Database returns the driver database bound to this connection.
func (c *Connection) Database() *mongo.Database { return c.handle.Database() }

// Ping checks that the underlying server is reachable.
func (c *Connection) Ping(ctx context.Context) error { return c.handle.Ping(ctx) }

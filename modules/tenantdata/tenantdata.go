// Package tenantdata defines the model set bound to every tenant
// connection and the factory that builds it.
package tenantdata

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/webix/udirdlaga/modules/rental"
	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// ErrNoDatabase is returned by Factory for connections without a
// database handle.
var ErrNoDatabase = errors.New("tenant connection has no database")

// Models is the data access of one tenant database.
type Models struct {
	Users   user.Store
	Rentals rental.Store
}

// Factory binds Mongo stores to conn. It is the tenantdb.ModelFactory of
// the server.
func Factory(conn *tenantdb.Connection) (Models, error) {
	db := conn.Database()
	if db == nil {
		return Models{}, fmt.Errorf("%w: %s", ErrNoDatabase, conn.Key())
	}
	return Models{
		Users:   user.NewMongoStore(db),
		Rentals: rental.NewMongoStore(db),
	}, nil
}

// EnsureIndexes creates the indexes of every tenant collection in db.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return errors.Join(
		user.NewMongoStore(db).EnsureIndexes(ctx),
		rental.NewMongoStore(db).EnsureIndexes(ctx),
	)
}

// Context is the tenant context carrying Models.
type Context = tenant.Context[Models]

// FromContext returns the models of the request's tenant.
func FromContext(ctx context.Context) (Models, error) {
	tc, ok := tenant.FromContext[Models](ctx)
	if !ok {
		return Models{}, tenant.ErrNoTenantInContext
	}
	return tc.Models, nil
}

// Rentals is a rental.StoreFunc reading the tenant context.
func Rentals(ctx context.Context) (rental.Store, error) {
	m, err := FromContext(ctx)
	return m.Rentals, err
}

// Users returns the user store of the request's tenant.
func Users(ctx context.Context) (user.Store, error) {
	m, err := FromContext(ctx)
	return m.Users, err
}

package tenantdata

import (
	"context"
	"fmt"

	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// Provisioner opens tenant databases on behalf of the control plane.
type Provisioner struct {
	registry *tenantdb.Registry
	binder   *tenantdb.Binder[Models]
	indexes  func(ctx context.Context, conn *tenantdb.Connection) error
}

// NewProvisioner creates a provisioner that creates the tenant indexes
// the first time it provisions a database.
func NewProvisioner(registry *tenantdb.Registry, binder *tenantdb.Binder[Models]) *Provisioner {
	return &Provisioner{
		registry: registry,
		binder:   binder,
		indexes: func(ctx context.Context, conn *tenantdb.Connection) error {
			if conn.Database() == nil {
				return fmt.Errorf("%w: %s", ErrNoDatabase, conn.Key())
			}
			return EnsureIndexes(ctx, conn.Database())
		},
	}
}

// Provision ensures the connection of key, creates its indexes and
// returns its user store.
func (p *Provisioner) Provision(ctx context.Context, key string) (user.Store, error) {
	conn, err := p.registry.EnsureTenant(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := p.indexes(ctx, conn); err != nil {
		return nil, fmt.Errorf("provision %s: %w", conn.Key(), err)
	}
	models, err := p.binder.Models(conn.Key())
	if err != nil {
		return nil, err
	}
	return models.Users, nil
}

// Release closes the connection of key.
func (p *Provisioner) Release(ctx context.Context, key string) error {
	return p.registry.CloseTenant(ctx, key)
}

// Package tenantdb routes requests to per-tenant databases.
//
// A Registry owns the control-plane connection and lazily opens one
// connection per tenant key, named "<prefix>_<key>" (for example
// "webix_acme"). Concurrent first use of a key results in a single open.
// A Binder caches the data-access objects built on top of each connection
// and is invalidated synchronously whenever the registry closes it.
//
//	registry := tenantdb.NewRegistry(tenantdb.NewMongoOpener(cfg), "webix-udirdlaga")
//	binder := tenantdb.NewBinder(registry, func(c *tenantdb.Connection) (Models, error) {
//		return NewModels(c.Database()), nil
//	})
//
//	if _, err := registry.EnsureTenant(ctx, "acme"); err != nil {
//		return err
//	}
//	models, err := binder.Models("acme")
//
// Keys are normalized with ParseKey before every lookup, so "ACME" and
// "acme" share a connection. Closing a connection that is still used by
// in-flight requests is the caller's responsibility; the registry keeps no
// reference counts.
package tenantdb

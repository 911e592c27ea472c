// Package mongo connects to the MongoDB server that hosts both the
// control-plane database and every tenant database.
//
// The control-plane client is created once at startup with New, which
// retries according to Config. Tenant clients are created on demand with
// NewTenantClient and use a smaller pool, since most tenants are only
// intermittently active.
//
//	cfg := mongo.Config{URI: "mongodb://localhost:27017/webix-udirdlaga"}
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	name, _ := mongo.DatabaseName(cfg.URI) // "webix-udirdlaga"
//	db := client.Database(name)
//
// Healthcheck adapts any client to the readiness probe signature used by
// httpserver.HealthCheckHandler.
package mongo

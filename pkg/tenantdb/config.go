package tenantdb

import "time"

// Config controls database naming and open behaviour.
type Config struct {
	Prefix      string        `env:"TENANT_DB_PREFIX" envDefault:"webix"`    // Prefix of every tenant database name.
	OpenTimeout time.Duration `env:"TENANT_DB_OPEN_TIMEOUT" envDefault:"0s"` // OpenTimeout bounds a single open; zero leaves it to the driver.
}

package main

import (
	"time"

	"github.com/webix/udirdlaga/modules/admin"
	"github.com/webix/udirdlaga/modules/rental"
	"github.com/webix/udirdlaga/pkg/httpserver"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/logger"
	"github.com/webix/udirdlaga/pkg/mongo"
	"github.com/webix/udirdlaga/pkg/ratelimiter"
	"github.com/webix/udirdlaga/pkg/redis"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

// Config is the complete server configuration, read from the environment
// and an optional .env file.
type Config struct {
	Log       logger.Config
	HTTP      httpserver.Config
	Mongo     mongo.Config
	TenantDB  tenantdb.Config
	Redis     redis.Config
	JWT       jwt.Config
	RateLimit ratelimiter.Config
	Rental    rental.Policy
	Admin     admin.BootstrapConfig

	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	TenantCacheTTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	TenantCacheMax int           `env:"TENANT_CACHE_SIZE" envDefault:"1000"`
	ReadyTimeout   time.Duration `env:"READINESS_TIMEOUT" envDefault:"3s"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

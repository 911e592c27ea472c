package mongo

import "time"

// Config holds the settings shared by the control-plane client and every
// per-tenant client. Tenant clients reuse the same server and credentials
// and only differ in the selected database.
type Config struct {
	URI             string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/webix-udirdlaga"` // URI of the server; its path names the control-plane database.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`                           // ConnectTimeout bounds server selection and dialing.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`                             // MaxPoolSize for the control-plane client.
	TenantPoolSize  uint64        `env:"MONGODB_TENANT_POOL_SIZE" envDefault:"10"`                           // TenantPoolSize is MaxPoolSize for each tenant client.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"0"`                               // MinPoolSize for every client.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`                       // MaxConnIdleTime before a pooled connection is dropped.
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`                             // RetryWrites enables retryable writes.
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`                              // RetryReads enables retryable reads.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`                              // RetryAttempts for the initial connect of the control-plane client.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`                             // RetryInterval between connect attempts.
}

// DefaultDatabase is used when the URI does not name a database.
const DefaultDatabase = "webix-udirdlaga"

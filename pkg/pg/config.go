package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                   // ConnectionString is the connection string to the primary database.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the per-pool ceiling of open connections.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`       // MaxIdleConns is the number of idle connections kept warm per pool.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is the maximum amount of time a connection may be idle to be reused.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum amount of time a connection may be reused.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the interval between retry attempts. It should be in the format "5s" for 5 seconds.

	MigrationsPath  string `env:"PG_MIGRATIONS_PATH" envDefault:"migrations/platform"` // MigrationsPath is the path to the primary database migrations directory.
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`  // MigrationsTable is the name of the table used to store the migration version.
}

// AdminConfig configures the schema-creation-capable connection used only
// during tenant provisioning and deprovisioning. It points at the cluster's
// maintenance database, never at a tenant database.
type AdminConfig struct {
	ConnectionString string        `env:"PG_ADMIN_CONN_URL,required"`                               // ConnectionString is the connection string to the maintenance database (usually "postgres").
	ConnectTimeout   time.Duration `env:"PG_ADMIN_CONNECT_TIMEOUT" envDefault:"15s"`                // ConnectTimeout bounds each administrative connection attempt.
	MigrationsPath   string        `env:"PG_TENANT_MIGRATIONS_PATH" envDefault:"migrations/tenant"` // MigrationsPath is the path to the tenant schema migration set.
	MigrationsTable  string        `env:"PG_TENANT_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}

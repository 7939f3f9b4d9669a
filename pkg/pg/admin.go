package pg

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// databaseNamePattern keeps DDL identifiers to the shape the provisioner
// derives from validated subdomains. Anything else is rejected before a
// connection is even opened.
var databaseNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidDatabaseName reports whether name is acceptable as a physical database
// identifier.
func ValidDatabaseName(name string) bool {
	return databaseNamePattern.MatchString(name)
}

// AdminClient performs cluster-level DDL (create/drop database) and tenant
// schema materialization. It opens short-lived administrative connections on
// demand and is independent of the per-tenant pool registry, so provisioning
// failures never poison cached pools.
type AdminClient struct {
	cfg AdminConfig
	log logger
}

// NewAdminClient returns a client for provisioning-time database management.
func NewAdminClient(cfg AdminConfig, log logger) *AdminClient {
	return &AdminClient{cfg: cfg, log: log}
}

func (c *AdminClient) connect(ctx context.Context) (*pgx.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, err := pgx.Connect(dialCtx, c.cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToConnectAsAdmin, err)
	}
	return conn, nil
}

// CreateDatabase issues CREATE DATABASE for name. CREATE DATABASE cannot run
// inside a transaction and does not accept bind parameters, so the identifier
// is validated and quoted before interpolation.
func (c *AdminClient) CreateDatabase(ctx context.Context, name string) error {
	if !ValidDatabaseName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		if IsDuplicateDatabaseError(err) {
			return errors.Join(ErrDatabaseAlreadyExists, err)
		}
		return errors.Join(ErrFailedToCreateDatabase, err)
	}
	return nil
}

// DropDatabase removes the physical database, terminating any live sessions.
// Dropping is idempotent so deprovision retries do not fail on the second pass.
func (c *AdminClient) DropDatabase(ctx context.Context, name string) error {
	if !ValidDatabaseName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()+" WITH (FORCE)"); err != nil {
		return errors.Join(ErrFailedToDropDatabase, err)
	}
	return nil
}

// DatabaseExists reports whether a database with the given name exists on the
// cluster.
func (c *AdminClient) DatabaseExists(ctx context.Context, name string) (bool, error) {
	if !ValidDatabaseName(name) {
		return false, fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return false, errors.Join(ErrFailedToCheckDatabase, err)
	}
	return exists, nil
}

// ApplySchema runs the tenant migration set against the named database using
// a short-lived pool derived from the administrative connection string.
func (c *AdminClient) ApplySchema(ctx context.Context, name string) error {
	if !ValidDatabaseName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}

	connConfig, err := pgxpool.ParseConfig(c.cfg.ConnectionString)
	if err != nil {
		return errors.Join(ErrFailedToParseDBConfig, err)
	}
	connConfig.ConnConfig.Database = name
	connConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return errors.Join(ErrFailedToOpenDBConnection, err)
	}
	defer pool.Close()

	return Migrate(ctx, pool, c.cfg.MigrationsPath, c.cfg.MigrationsTable, c.log)
}

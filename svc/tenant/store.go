package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storekit/storekit/pkg/pg"
	"github.com/storekit/storekit/pkg/tenantdb"
)

// Querier is the subset of pgxpool.Pool the store needs. Narrowed so tests
// can substitute pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DBFunc resolves the database handle for the current unit of work.
type DBFunc func(ctx context.Context) (Querier, error)

// PGStore persists tenants with pgx. Queries run against whichever database
// is bound in the context, so the same store serves the primary database, a
// reseller's database, and a tenant's own database depending on the caller's
// binding. Global-uniqueness checks always target the primary database.
type PGStore struct {
	current DBFunc
	primary DBFunc
}

// NewStore returns a store that resolves its connection through the registry.
func NewStore(registry *tenantdb.Registry) *PGStore {
	return &PGStore{
		current: func(ctx context.Context) (Querier, error) {
			return registry.PoolFromContext(ctx)
		},
		primary: func(ctx context.Context) (Querier, error) {
			return registry.Pool(ctx, registry.DefaultDatabase())
		},
	}
}

// NewStoreWithDB wires explicit database resolvers. Used by tests.
func NewStoreWithDB(current, primary DBFunc) *PGStore {
	return &PGStore{current: current, primary: primary}
}

const tenantColumns = "id, name, subdomain, database_name, customer_id, status, created_at"

// Create inserts the tenant record into the database bound in ctx. A unique
// constraint violation on the subdomain is mapped to ErrSubdomainTaken: the
// constraint, not the pre-check, is the authoritative conflict signal.
func (s *PGStore) Create(ctx context.Context, t *Tenant) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		"INSERT INTO tenants ("+tenantColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		t.ID, t.Name, t.Subdomain, t.DatabaseName, t.CustomerID, t.Status, t.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrSubdomainTaken, err)
		}
		return err
	}
	return nil
}

// GetByID fetches a tenant from the database bound in ctx.
func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	db, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return scanTenant(db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id))
}

// GetBySubdomain fetches a tenant by subdomain from the primary database.
func (s *PGStore) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	db, err := s.primary(ctx)
	if err != nil {
		return nil, err
	}
	return scanTenant(db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE subdomain = $1", subdomain))
}

// GetByIdentifier implements Provider for the request middleware.
func (s *PGStore) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	return s.GetBySubdomain(ctx, identifier)
}

// List returns every tenant visible from the database bound in ctx.
func (s *PGStore) List(ctx context.Context) ([]Tenant, error) {
	db, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, "SELECT "+tenantColumns+" FROM tenants ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	return collectTenants(rows)
}

// ListByCustomer returns the tenants owned by one customer, scoped to the
// database bound in ctx.
func (s *PGStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Tenant, error) {
	db, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE customer_id = $1 ORDER BY created_at", customerID)
	if err != nil {
		return nil, err
	}
	return collectTenants(rows)
}

// UpdateStatus changes a tenant's lifecycle state in the database bound in ctx.
func (s *PGStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, "UPDATE tenants SET status = $2 WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// Delete removes a tenant record from the database bound in ctx.
func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, "DELETE FROM tenants WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// SubdomainTaken checks global uniqueness against the primary database.
// Fast-path only: the insert's unique constraint closes the race window.
func (s *PGStore) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	db, err := s.primary(ctx)
	if err != nil {
		return false, err
	}

	var taken bool
	if err := db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM tenants WHERE subdomain = $1)", subdomain).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// CreateAdminUser seeds the initial administrative credential inside the
// tenant's own database (the caller binds it first). Upsert keeps retried
// provisioning idempotent.
func (s *PGStore) CreateAdminUser(ctx context.Context, email string, passwordHash []byte) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, 'admin', $4)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.New(), email, passwordHash, time.Now().UTC(),
	)
	return err
}

// UpsertTemplate writes a default template by natural key (name).
func (s *PGStore) UpsertTemplate(ctx context.Context, tpl Template) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO templates (id, name, body, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`,
		uuid.New(), tpl.Name, tpl.Body, time.Now().UTC(),
	)
	return err
}

// UpsertPage writes an essential page by natural key (slug).
func (s *PGStore) UpsertPage(ctx context.Context, page Page) error {
	db, err := s.current(ctx)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO pages (id, slug, title, body, template_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body, template_name = EXCLUDED.template_name`,
		uuid.New(), page.Slug, page.Title, page.Body, page.TemplateName, time.Now().UTC(),
	)
	return err
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.DatabaseName, &t.CustomerID, &t.Status, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTenants(rows pgx.Rows) ([]Tenant, error) {
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.DatabaseName, &t.CustomerID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

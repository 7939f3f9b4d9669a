package tenant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storekit/storekit/pkg/tenantdb"
)

// Config carries the provisioning and impersonation settings.
type Config struct {
	DatabasePrefix string        `env:"TENANT_DB_PREFIX" envDefault:"tenant_"`     // DatabasePrefix is prepended to the subdomain-derived physical database name.
	TokenSecret    string        `env:"IMPERSONATION_TOKEN_SECRET,required"`       // TokenSecret signs impersonation tokens.
	TokenTTL       time.Duration `env:"IMPERSONATION_TOKEN_TTL" envDefault:"1m"`   // TokenTTL is the impersonation token lifetime.
	BcryptCost     int           `env:"TENANT_ADMIN_BCRYPT_COST" envDefault:"10"`  // BcryptCost hashes the initial tenant admin password.
	SeedOnCreate   bool          `env:"TENANT_SEED_ON_CREATE" envDefault:"true"`   // SeedOnCreate populates default content right after provisioning.
}

// Storage defines the persistence operations the service needs. *PGStore is
// the production implementation.
type Storage interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Tenant, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	SubdomainTaken(ctx context.Context, subdomain string) (bool, error)
	CreateAdminUser(ctx context.Context, email string, passwordHash []byte) error
	UpsertTemplate(ctx context.Context, tpl Template) error
	UpsertPage(ctx context.Context, page Page) error
}

// DatabaseManager performs the cluster-level DDL of provisioning. pg.AdminClient
// is the production implementation.
type DatabaseManager interface {
	CreateDatabase(ctx context.Context, name string) error
	DropDatabase(ctx context.Context, name string) error
	DatabaseExists(ctx context.Context, name string) (bool, error)
	ApplySchema(ctx context.Context, name string) error
}

// Service orchestrates the tenant lifecycle: provisioning, seeding, shadow
// registration, status administration, deprovisioning, and impersonation.
type Service struct {
	cfg      Config
	store    Storage
	dbm      DatabaseManager
	registry *tenantdb.Registry
	log      *slog.Logger
}

// NewService wires the tenant lifecycle service.
func NewService(cfg Config, store Storage, dbm DatabaseManager, registry *tenantdb.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Minute
	}
	if cfg.DatabasePrefix == "" {
		cfg.DatabasePrefix = "tenant_"
	}
	return &Service{cfg: cfg, store: store, dbm: dbm, registry: registry, log: log}
}

// Provision turns a requested subdomain into a working, isolated tenant.
//
// Validation and the uniqueness pre-check happen before any side effect. The
// physical database is then created and migrated; a failure there is fatal to
// the whole operation and, because nothing has been registered yet, needs no
// cleanup in the primary database. A database orphaned by a late failure is
// left for manual remediation: auto-dropping risks destroying data when the
// failure happened after partial seeding by a retried request.
//
// The authoritative tenant record is inserted in whichever database context
// initiated the request. When that context is not the primary database (a
// reseller creating a sub-tenant), a shadow copy with the identical ID is
// written to the primary database afterwards.
func (s *Service) Provision(ctx context.Context, params NewTenantParams) (*Tenant, error) {
	if !ValidSubdomain(params.Subdomain) {
		return nil, ErrInvalidSubdomain
	}

	taken, err := s.store.SubdomainTaken(ctx, params.Subdomain)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSubdomainTaken
	}

	dbName := DatabaseName(s.cfg.DatabasePrefix, params.Subdomain)

	if err := s.dbm.CreateDatabase(ctx, dbName); err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}
	if err := s.dbm.ApplySchema(ctx, dbName); err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.OwnerPassword), s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}
	err = tenantdb.RunWithDatabase(ctx, dbName, func(ctx context.Context) error {
		return s.store.CreateAdminUser(ctx, params.OwnerEmail, hash)
	})
	if err != nil {
		return nil, errors.Join(ErrProvisioningFailed, err)
	}

	t := &Tenant{
		ID:           uuid.New(),
		Name:         params.Name,
		Subdomain:    params.Subdomain,
		DatabaseName: dbName,
		CustomerID:   params.CustomerID,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	// Authoritative insert in the initiating database context.
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	s.writeShadow(ctx, t)

	if s.cfg.SeedOnCreate {
		err = tenantdb.RunWithDatabase(ctx, dbName, func(ctx context.Context) error {
			return s.Seed(ctx, params.Name)
		})
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Get fetches one tenant in the current database context.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all tenants visible in the current database context.
func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.store.List(ctx)
}

// ListOwned returns the tenants owned by one customer, scoped to whichever
// database context the request arrived in.
func (s *Service) ListOwned(ctx context.Context, customerID uuid.UUID) ([]Tenant, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// SetStatus moves a tenant between lifecycle states.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// Deprovision drops the tenant's physical database, evicts its pool, and
// removes the platform record. The subdomain becomes reusable afterwards.
func (s *Service) Deprovision(ctx context.Context, id uuid.UUID) error {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Pending work on the pool is useless once the database is gone.
	s.registry.Evict(t.DatabaseName)

	if err := s.dbm.DropDatabase(ctx, t.DatabaseName); err != nil {
		return err
	}
	return s.store.Delete(ctx, t.ID)
}

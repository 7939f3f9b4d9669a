package tenant

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the platform-level lifecycle state of a tenant.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// Tenant is one customer's isolated site, backed by its own physical
// database. The same record exists in the primary database and, for tenants
// created from a reseller context, as a shadow copy with the identical ID.
type Tenant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	DatabaseName string    `json:"database_name"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewTenantParams carries everything the provisioner needs to stand up a
// working tenant: the desired subdomain, the owning account, and the initial
// administrative credential seeded into the tenant's own database.
type NewTenantParams struct {
	Name          string
	Subdomain     string
	CustomerID    uuid.UUID
	OwnerEmail    string
	OwnerPassword string
}

// subdomainPattern allows lowercase alphanumerics with internal hyphens:
// no leading/trailing hyphen, no uppercase, non-empty.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// MaxSubdomainLength keeps subdomains DNS-label safe.
const MaxSubdomainLength = 63

// ValidSubdomain reports whether s is an acceptable tenant subdomain.
func ValidSubdomain(s string) bool {
	if s == "" || len(s) > MaxSubdomainLength {
		return false
	}
	return subdomainPattern.MatchString(s)
}

// DatabaseName derives the deterministic physical database name for a
// subdomain: hyphens become underscores under a fixed prefix, so "acme-shop"
// maps to "tenant_acme_shop".
func DatabaseName(prefix, subdomain string) string {
	return prefix + strings.ReplaceAll(subdomain, "-", "_")
}

// Provider loads tenant information for request-scoped resolution. The
// middleware consumes it through the cache; the store implements it.
type Provider interface {
	// GetByIdentifier retrieves a tenant by subdomain.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}

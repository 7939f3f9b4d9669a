package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidSubdomain is returned for subdomains outside the allowed
	// lowercase-alphanumeric-with-hyphens shape. Rejected before any side
	// effect.
	ErrInvalidSubdomain = errors.New("invalid subdomain")

	// ErrSubdomainTaken is returned when the requested subdomain already
	// belongs to a tenant.
	ErrSubdomainTaken = errors.New("subdomain already in use")

	// ErrInvalidStatus is returned for lifecycle states outside
	// active/suspended/cancelled.
	ErrInvalidStatus = errors.New("invalid tenant status")

	// ErrInactiveTenant is returned when a request targets a tenant that is
	// suspended or cancelled.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNotOwned is returned when a customer requests an operation on a
	// tenant that does not belong to them.
	ErrNotOwned = errors.New("tenant is not owned by the caller")

	// ErrTokenExpired is returned for impersonation tokens past their expiry.
	ErrTokenExpired = errors.New("impersonation token expired")

	// ErrInvalidTokenPurpose is returned when a well-formed token carries the
	// wrong purpose tag.
	ErrInvalidTokenPurpose = errors.New("invalid token purpose")

	// ErrProvisioningFailed wraps database-creation or schema-apply failures.
	// Nothing has been registered when it is returned, but an orphaned
	// physical database may exist (manual remediation, never auto-dropped).
	ErrProvisioningFailed = errors.New("tenant provisioning failed")
)

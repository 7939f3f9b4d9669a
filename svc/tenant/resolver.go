package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Resolver extracts a tenant identifier (subdomain) from an HTTP request.
// Returns empty string if no tenant is addressed, error if extraction failed.
type Resolver func(r *http.Request) (string, error)

// NewSubdomainResolver extracts the tenant subdomain from the request host,
// optionally stripping a configured suffix such as ".storekit.app". The base
// domain itself resolves to no tenant (primary database).
func NewSubdomainResolver(suffix string) Resolver {
	return func(req *http.Request) (string, error) {
		host := req.Host

		// Remove port if present
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}

		originalParts := strings.Split(host, ".")

		if suffix != "" && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			host = host[:len(host)-len(suffix)]
		}

		parts := strings.Split(host, ".")
		if len(parts) == 0 || parts[0] == "" {
			return "", nil
		}

		subdomain := parts[0]
		// Skip www prefix, use next subdomain if available
		if subdomain == "www" {
			if len(parts) > 1 {
				subdomain = parts[1]
			} else {
				return "", nil
			}
		}

		// Require at least subdomain.domain.tld before treating the first
		// label as a tenant.
		if len(originalParts) < 3 {
			return "", nil
		}

		subdomain = strings.TrimSpace(subdomain)
		if subdomain == "" {
			return "", nil
		}
		if !ValidSubdomain(subdomain) {
			return "", fmt.Errorf("%w: subdomain %q", ErrInvalidSubdomain, subdomain)
		}
		return subdomain, nil
	}
}

// NewHeaderResolver extracts the tenant identifier from an HTTP header,
// defaulting to "X-Tenant-ID". Used by internal tooling and tests where
// host-based routing is unavailable.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}

	return func(req *http.Request) (string, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return "", nil
		}
		if !ValidSubdomain(value) {
			return "", fmt.Errorf("%w: header value %q", ErrInvalidSubdomain, value)
		}
		return value, nil
	}
}

// NewCompositeResolver tries resolvers in order, returning the first
// non-empty identifier. Errors are aggregated so a misconfigured resolver
// does not silently disappear.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error
		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}
		if len(errs) > 0 {
			return "", errors.Join(errs...)
		}
		return "", nil
	}
}

// Package tenantdb implements the data-isolation core of the platform: it
// decides which physical database serves a unit of work and hands out exactly
// one connection pool per database name.
//
// # Database binding
//
// The current database name travels in the request context, set once at the
// edge (middleware, provisioning workflow) and read anywhere below without
// threading it through parameter lists:
//
//	err := tenantdb.RunWithDatabase(ctx, "tenant_acme", func(ctx context.Context) error {
//	    pool, err := registry.PoolFromContext(ctx)
//	    ...
//	})
//
// Bindings are plain context values: nesting shadows the outer binding for the
// inner call tree only, teardown is automatic on return, and concurrent
// request trees can never observe each other's binding because each owns its
// own context chain. This is a deliberate scoping boundary, not global state.
//
// # Pool registry
//
// Registry owns the process-wide map of database name to *pgxpool.Pool. It is
// constructed once at startup and passed by reference. The check-then-create
// path is race-free: concurrent first-time callers for the same name share a
// single pool construction. Pools live until Evict (tenant deprovisioning) or
// CloseAll (orderly shutdown); there is no idle eviction, so a dormant tenant
// keeps one pool's worth of reserved capacity. That resource-for-simplicity
// trade-off is intentional.
package tenantdb

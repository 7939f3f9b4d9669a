// Package pg provides the PostgreSQL building blocks of the platform's data
// layer: pooled connectivity via pgx/v5, goose-driven schema migrations, and
// the administrative DDL surface (create/drop database, tenant schema apply)
// used by the provisioner.
//
// Three cooperating pieces:
//
//   - Config / Connect – declarative, env-driven pool configuration and a
//     retrying dialer. ConnectDatabase overrides the target database name so
//     per-tenant pools are derived from one base connection string.
//
//   - Migrate – runs goose migrations against an existing pool, routing
//     goose's output through the application logger.
//
//   - AdminClient – short-lived, schema-creation-capable connections for
//     provisioning. Deliberately independent of any pool cache: a failed
//     CREATE DATABASE must never leave a poisoned pool behind.
//
// Error classifiers such as [IsDuplicateKeyError] (SQLSTATE 23505) make the
// database-level unique constraint the authoritative conflict signal for
// subdomain collisions, with application-level pre-checks serving only as a
// fast path.
package pg

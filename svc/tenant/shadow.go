package tenant

import (
	"context"
	"errors"

	"github.com/storekit/storekit/pkg/tenantdb"
)

// writeShadow duplicates the tenant record into the primary database when the
// authoritative write happened inside a reseller's database context, keeping
// platform-wide queries (billing, aggregation) from fanning out across every
// tenant database. The shadow carries the same primary key and customer_id.
//
// Failure here is logged and swallowed, the one documented exception to
// "surface or escalate": the tenant itself is fully usable, only platform
// visibility is degraded until reconciled. The two writes span independent
// physical databases and are not atomic; a crash between them leaves the
// invariant violated, repaired by ReconcileShadows.
func (s *Service) writeShadow(ctx context.Context, t *Tenant) {
	primary := s.registry.DefaultDatabase()
	if s.registry.Database(ctx) == primary {
		return
	}

	err := tenantdb.RunWithDatabase(ctx, primary, func(ctx context.Context) error {
		return s.store.Create(ctx, t)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "shadow tenant write failed, platform visibility degraded",
			"tenant_id", t.ID, "subdomain", t.Subdomain, "error", err)
	}
}

// ReconcileShadows repairs shadow divergence for one reseller database:
// every tenant recorded there but missing from the primary database gets its
// shadow re-inserted. Intended to be invoked manually or from a cron job, not
// as a background loop. Returns the number of repaired records.
func (s *Service) ReconcileShadows(ctx context.Context, resellerDB string) (int, error) {
	var tenants []Tenant
	err := tenantdb.RunWithDatabase(ctx, resellerDB, func(ctx context.Context) error {
		var err error
		tenants, err = s.store.List(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	repaired := 0
	err = tenantdb.RunWithDatabase(ctx, s.registry.DefaultDatabase(), func(ctx context.Context) error {
		for i := range tenants {
			_, err := s.store.GetByID(ctx, tenants[i].ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrTenantNotFound) {
				return err
			}
			if err := s.store.Create(ctx, &tenants[i]); err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	return repaired, err
}

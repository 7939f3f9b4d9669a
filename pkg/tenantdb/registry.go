package tenantdb

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/storekit/pkg/pg"
)

// DialFunc constructs a connection pool for the named database.
type DialFunc func(ctx context.Context, dbName string) (*pgxpool.Pool, error)

// poolEntry holds one lazily constructed pool. The sync.Once guarantees that
// concurrent first-time callers for the same name share a single construction;
// pool and err are assigned under the registry mutex so Len and Evict can read
// them without participating in the Once.
type poolEntry struct {
	once sync.Once
	pool *pgxpool.Pool
	err  error
}

// Registry owns one pooled-connection handle per physical database name. It
// is the only piece of shared mutable process-wide state in the isolation
// core: construct it once at startup and pass it by reference.
type Registry struct {
	defaultDB string
	dial      DialFunc

	mu      sync.RWMutex
	entries map[string]*poolEntry
	closed  bool
}

// New returns a registry that dials databases on the cluster described by
// cfg, overriding the target database name per pool.
func New(cfg pg.Config, defaultDB string) (*Registry, error) {
	return NewWithDial(defaultDB, func(ctx context.Context, dbName string) (*pgxpool.Pool, error) {
		return pg.ConnectDatabase(ctx, cfg, dbName)
	})
}

// NewWithDial returns a registry with a custom dialer. Used by tests and by
// deployments that need per-database connection tuning.
func NewWithDial(defaultDB string, dial DialFunc) (*Registry, error) {
	if defaultDB == "" {
		return nil, ErrEmptyDefaultDatabase
	}
	if dial == nil {
		return nil, ErrNilDialFunc
	}
	return &Registry{
		defaultDB: defaultDB,
		dial:      dial,
		entries:   make(map[string]*poolEntry),
	}, nil
}

// DefaultDatabase returns the primary/platform database name.
func (r *Registry) DefaultDatabase() string {
	return r.defaultDB
}

// Database resolves the database name for the current unit of work: the
// context binding when present, the primary database otherwise. It never
// fails; code running outside any binding degrades to the primary database.
func (r *Registry) Database(ctx context.Context) string {
	if name, ok := DatabaseFromContext(ctx); ok {
		return name
	}
	return r.defaultDB
}

// Pool returns the cached pool for name, constructing it exactly once on
// first use. An empty name targets the primary database. Failed constructions
// are not cached: the shared entry is discarded so a later caller can retry.
func (r *Registry) Pool(ctx context.Context, name string) (*pgxpool.Pool, error) {
	if name == "" {
		name = r.defaultDB
	}

	r.mu.RLock()
	entry, ok := r.entries[name]
	closed := r.closed
	r.mu.RUnlock()

	if closed {
		return nil, ErrRegistryClosed
	}

	if !ok {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrRegistryClosed
		}
		entry, ok = r.entries[name]
		if !ok {
			entry = &poolEntry{}
			r.entries[name] = entry
		}
		r.mu.Unlock()
	}

	entry.once.Do(func() {
		pool, err := r.dial(ctx, name)
		// Publish under the registry lock: Len and Evict read entry.pool
		// without going through the sync.Once.
		r.mu.Lock()
		entry.pool, entry.err = pool, err
		r.mu.Unlock()
	})

	if entry.err != nil {
		r.mu.Lock()
		if r.entries[name] == entry {
			delete(r.entries, name)
		}
		r.mu.Unlock()
		return nil, entry.err
	}

	return entry.pool, nil
}

// PoolFromContext returns the pool for the database bound in ctx, falling
// back to the primary database when no binding is present. This is the single
// accessor business queries go through.
func (r *Registry) PoolFromContext(ctx context.Context) (*pgxpool.Pool, error) {
	return r.Pool(ctx, r.Database(ctx))
}

// Len reports how many pools are currently alive. Observability hook, no side
// effects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, entry := range r.entries {
		if entry.pool != nil {
			n++
		}
	}
	return n
}

// Evict closes and forgets the pool for name. Used when a tenant's physical
// database is dropped; pending work on that pool becomes useless by
// definition.
func (r *Registry) Evict(name string) {
	r.mu.Lock()
	entry, ok := r.entries[name]
	delete(r.entries, name)
	r.mu.Unlock()

	if ok && entry.pool != nil {
		entry.pool.Close()
	}
}

// CloseAll drains and closes every cached pool and rejects further use.
// Called only at orderly shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*poolEntry)
	r.closed = true
	r.mu.Unlock()

	for _, entry := range entries {
		if entry.pool != nil {
			entry.pool.Close()
		}
	}
}

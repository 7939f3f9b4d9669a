package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/storekit/storekit/modules/admin"
	"github.com/storekit/storekit/modules/portal"
	"github.com/storekit/storekit/pkg/config"
	"github.com/storekit/storekit/pkg/httpserver"
	"github.com/storekit/storekit/pkg/logger"
	"github.com/storekit/storekit/pkg/pg"
	"github.com/storekit/storekit/pkg/redis"
	"github.com/storekit/storekit/pkg/tenantdb"
	"github.com/storekit/storekit/svc/tenant"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`      // Env selects logging defaults.
	PrimaryDB  string `env:"PG_PRIMARY_DB" envDefault:"storekit"`   // PrimaryDB is the platform database name.
	BaseDomain string `env:"BASE_DOMAIN" envDefault:"storekit.app"` // BaseDomain is stripped from request hosts to find the tenant subdomain.
}

func main() {
	ctx := context.Background()

	var (
		appCfg    appConfig
		pgCfg     pg.Config
		adminCfg  pg.AdminConfig
		tenantCfg tenant.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&adminCfg)
	config.MustLoad(&tenantCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "storekit"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	registry, err := tenantdb.New(pgCfg, appCfg.PrimaryDB)
	if err != nil {
		log.ErrorContext(ctx, "database registry init failed", logger.Error(err))
		os.Exit(1)
	}
	defer registry.CloseAll()

	primaryPool, err := registry.Pool(ctx, appCfg.PrimaryDB)
	if err != nil {
		log.ErrorContext(ctx, "primary database unreachable", logger.Error(err), logger.Database(appCfg.PrimaryDB))
		os.Exit(1)
	}
	if err := pg.Migrate(ctx, primaryPool, pgCfg.MigrationsPath, pgCfg.MigrationsTable, log); err != nil {
		log.ErrorContext(ctx, "platform migrations failed", logger.Error(err))
		os.Exit(1)
	}

	store := tenant.NewStore(registry)
	dbAdmin := pg.NewAdminClient(adminCfg, log)
	svc := tenant.NewService(tenantCfg, store, dbAdmin, registry, log)

	// Prefer the shared Redis cache so resolution survives restarts and is
	// consistent across replicas; fall back to per-process memory otherwise.
	var cache tenant.Cache
	if redisCfg.ConnectionURL != "" {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "redis unreachable", logger.Error(err))
			os.Exit(1)
		}
		cache = tenant.NewRedisCache(redisClient)
	} else {
		cache = tenant.NewMemoryCache(tenant.DefaultCacheSize)
	}
	defer cache.Close()

	resolve := tenant.NewCompositeResolver(
		tenant.NewSubdomainResolver(appCfg.BaseDomain),
		tenant.NewHeaderResolver("X-Tenant-ID"),
	)

	r := chi.NewRouter()
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(primaryPool)))
	r.Mount("/admin", admin.NewRouter(svc, log))
	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolve, store, tenant.WithCache(cache)))
		r.Mount("/portal", portal.NewRouter(svc, log))
	})

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, withRequestLogging(log, r)); err != nil {
		log.ErrorContext(ctx, "server stopped", logger.Error(err))
		os.Exit(1)
	}
}

// withRequestLogging emits one debug record per request with the tenant
// attribute injected by the logger's context extractor.
func withRequestLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		log.DebugContext(r.Context(), "request handled", "method", r.Method, "path", r.URL.Path)
	})
}

// Command inkwell serves the blog content API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/inkwell/internal/config"
	"github.com/dmitrymomot/inkwell/internal/content"
	"github.com/dmitrymomot/inkwell/internal/handlers"
	"github.com/dmitrymomot/inkwell/internal/store/postgres"
	"github.com/dmitrymomot/inkwell/internal/tasks"
	"github.com/dmitrymomot/inkwell/internal/web"
	"github.com/dmitrymomot/inkwell/middlewares"
	"github.com/dmitrymomot/inkwell/pkg/cache"
	"github.com/dmitrymomot/inkwell/pkg/db"
	"github.com/dmitrymomot/inkwell/pkg/health"
	"github.com/dmitrymomot/inkwell/pkg/job"
	"github.com/dmitrymomot/inkwell/pkg/jwt"
	"github.com/dmitrymomot/inkwell/pkg/logger"
	"github.com/dmitrymomot/inkwell/pkg/quota"
	"github.com/dmitrymomot/inkwell/pkg/redis"
)

const throttleJanitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, flush := logger.New(cfg.Log, middlewares.RequestIDExtractor(), middlewares.UserIDExtractor())
	defer flush()
	log = log.With(slog.String("env", cfg.AppEnv))

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, pool, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}
	if err := job.Migrate(ctx, pool); err != nil {
		return err
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}

	var rdb goredis.UniversalClient
	if cfg.UsesRedis() {
		if rdb, err = redis.Open(ctx, cfg.RedisURL); err != nil {
			return err
		}
		checks["redis"] = redis.Healthcheck(rdb)
	}

	categoryCache := newCategoryCache(cfg, rdb)
	store := postgres.New(pool)
	svc := content.NewService(store.Articles(), store.Categories(), store.Users(),
		content.WithLogger(log),
		content.WithCategoryCache(categoryCache, cfg.CategoryCacheTTL),
	)

	counters := newCounterStore(cfg, pool, rdb)
	limiter := quota.New(counters, quota.WithLocation(cfg.Quota.Location()))

	maintenance := []job.Task{tasks.NewPurgeDeletedArticles(svc, cfg.ArticleRetention, log)}
	if p, ok := counters.(tasks.CounterPurger); ok {
		maintenance = append(maintenance, tasks.NewPurgeQuotaCounters(p, limiter.Now, log))
	}

	scheduler, err := job.NewScheduler(pool, maintenance, job.WithLogger(log))
	if err != nil {
		return err
	}
	checks["scheduler"] = scheduler.Healthcheck

	tokens, err := jwt.New(cfg.JWT.Secret, jwt.WithIssuer(cfg.JWT.Issuer), jwt.WithTTL(cfg.JWT.TTL))
	if err != nil {
		return err
	}

	throttle := middlewares.NewThrottleStore(cfg.Quota.ThrottlePerMinute)
	identity := middlewares.IdentityKey(cfg.Quota.TrustForwardedFor)
	limits := []web.Middleware{
		middlewares.Throttle(throttle, identity),
		middlewares.DailyQuota(limiter, cfg.Quota.DailyLimit,
			middlewares.WithQuotaKeyFunc(identity),
			middlewares.WithQuotaFailOpen(cfg.Quota.FailOpen),
		),
	}
	guards := handlers.Guards{
		Authenticated: append([]web.Middleware{middlewares.Auth(tokens)}, limits...),
		Public:        limits,
	}

	app := web.New(
		web.WithLogger(log),
		web.WithErrorHandler(handlers.ErrorHandler),
		web.WithNotFoundHandler(handlers.NotFound),
		web.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		web.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Recover(),
			middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORSAllowedOrigins...)),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		web.WithHealthChecks(checks),
		web.WithHandlers(
			handlers.NewAuthHandler(svc, guards),
			handlers.NewArticleHandler(svc, guards),
			handlers.NewCategoryHandler(svc, guards),
		),
	)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()

	// Shutdown hooks run in order: stop background work first, then close
	// the connections it used.
	shutdown := []web.RunOption{
		web.ShutdownHook(scheduler.Stop),
		web.ShutdownHook(func(context.Context) error {
			stopJanitor()
			return nil
		}),
		web.ShutdownHook(func(context.Context) error { return categoryCache.Close() }),
		web.ShutdownHook(func(context.Context) error { return closeCounters(counters) }),
	}
	if rdb != nil {
		shutdown = append(shutdown, web.ShutdownHook(redis.Shutdown(rdb)))
	}
	shutdown = append(shutdown, web.ShutdownHook(db.Shutdown(pool)))

	return app.Run(cfg.HTTPAddr, append([]web.RunOption{
		web.ShutdownTimeout(cfg.ShutdownTimeout),
		web.StartupHook(func(ctx context.Context) error {
			throttle.StartJanitor(janitorCtx, throttleJanitorInterval)
			// The scheduler outlives the startup context; Stop ends it.
			return scheduler.Start(context.WithoutCancel(ctx))
		}),
	}, shutdown...)...)
}

func newCategoryCache(cfg config.Config, rdb goredis.UniversalClient) cache.Cache[[]content.Category] {
	if cfg.CacheBackend == config.BackendRedis {
		return cache.NewRedis[[]content.Category](rdb, cache.WithPrefix("inkwell:cache:"))
	}
	return cache.NewMemory[[]content.Category](cache.WithDefaultTTL(cfg.CategoryCacheTTL))
}

// newCounterStore selects the quota backend.
func newCounterStore(cfg config.Config, pool db.Querier, rdb goredis.UniversalClient) quota.Store {
	switch cfg.Quota.Backend {
	case config.BackendRedis:
		return quota.NewRedisStore(rdb, "inkwell:quota")
	case config.BackendPostgres:
		return quota.NewPostgresStore(pool)
	default:
		return quota.NewMemoryStore()
	}
}

func closeCounters(s quota.Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

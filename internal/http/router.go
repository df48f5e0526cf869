package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/contracthub/internal/auth"
	"github.com/geocoder89/contracthub/internal/cache"
	"github.com/geocoder89/contracthub/internal/config"
	"github.com/geocoder89/contracthub/internal/graph"
	"github.com/geocoder89/contracthub/internal/http/handlers"
	"github.com/geocoder89/contracthub/internal/http/middlewares"
	"github.com/geocoder89/contracthub/internal/observability"
	"github.com/geocoder89/contracthub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires the production stack: postgres repos behind the resolver,
// redis (or in-process) cache, prometheus registry, single /graphql route.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())

	var cacheStore cache.Store

	if cfg.RedisAddr != "" {
		cacheStore = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
	} else {
		cacheStore = cache.NewMemory(cfg.CacheTTL)
	}

	usersRepo := postgres.NewUsersRepo(pool, prom)
	contractsRepo := postgres.NewContractsRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	resolver := graph.NewResolver(usersRepo, contractsRepo, refreshRepo, jwtManager, cacheStore, prom, log)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	return NewRouterWith(log, cfg, resolver, jwtManager, prom, reg, ping)
}

// NewRouterWith assembles the engine from already-built pieces. Tests use
// this directly with memory repos.
func NewRouterWith(log *slog.Logger, cfg config.Config, resolver *graph.Resolver, jwtManager *auth.Manager, prom *observability.Prom, reg *prometheus.Registry, ping func() error) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("contracthub"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// the API itself is one endpoint; auth is optional here and enforced
	// per operation in the resolvers
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	schema := graph.NewSchema(resolver)

	r.POST("/graphql", authMiddleware.OptionalAuth(), gin.WrapH(&relay.Handler{Schema: schema}))

	return r
}

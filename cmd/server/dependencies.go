package main

import (
	"context"
	"log/slog"

	"fitrelay/internal/cache"
	cacheMetrics "fitrelay/internal/cache/metrics"
	cacheStore "fitrelay/internal/cache/store"
	"fitrelay/internal/credential/models"
	credStore "fitrelay/internal/credential/store"
	"fitrelay/internal/platform/config"
	"fitrelay/internal/platform/database"
	"fitrelay/internal/platform/health"
	"fitrelay/internal/platform/redis"
	"fitrelay/internal/relay"
	relayMetrics "fitrelay/internal/relay/metrics"
	"fitrelay/internal/relay/tracer"
	"fitrelay/internal/token"
	tokenMetrics "fitrelay/internal/token/metrics"
	"fitrelay/internal/upstream"
	httptransport "fitrelay/internal/transport/http"
)

// dependencies holds everything main needs to wire the router and shut down
// cleanly. Store backends are chosen from configuration: Redis and Postgres
// when configured, in-memory fallbacks otherwise.
type dependencies struct {
	Relay       httptransport.RelayService
	Credentials httptransport.CredentialStore

	redisClient *redis.Client
	dbPool      *database.Pool
}

func buildDependencies(cfg config.Server, log *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	redisClient, err := redis.New(redis.Config{URL: cfg.RedisURL})
	if err != nil {
		return nil, err
	}
	deps.redisClient = redisClient

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	dbPool, err := database.New(dbCfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.dbPool = dbPool

	credentials := buildCredentialStore(deps, log)
	deps.Credentials = credentials

	responses := buildCacheStore(deps, log)

	exchanger := upstream.NewAuthClient(
		cfg.UpstreamBaseURL, cfg.ClientID, cfg.ClientSecret, cfg.UpstreamTimeout,
		upstream.WithAuthLogger(log),
	)
	tokens := token.New(credentials, exchanger,
		token.WithLogger(log),
		token.WithMetrics(tokenMetrics.New()),
	)

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.Locale, cfg.UpstreamTimeout,
		upstream.WithLogger(log),
	)

	deps.Relay = relay.New(buildResolver(cfg), responses, tokens, client,
		relay.WithLogger(log),
		relay.WithTracer(tracer.NewOTel()),
		relay.WithMetrics(relayMetrics.New()),
		relay.WithCacheMetrics(cacheMetrics.New()),
		relay.WithStoreTimeout(cfg.StoreTimeout),
	)

	return deps, nil
}

// credentialStore is the full surface of every credential store backend,
// consumed in slices by the token service and the connection handler.
type credentialStore interface {
	Find(ctx context.Context, userID string) (*models.Record, error)
	Upsert(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, userID string) error
}

// buildCredentialStore prefers Postgres for durability, then Redis, then the
// in-memory store for local development.
func buildCredentialStore(deps *dependencies, log *slog.Logger) credentialStore {
	switch {
	case deps.dbPool != nil:
		log.Info("credential store: postgres")
		return credStore.NewPostgres(deps.dbPool.DB)
	case deps.redisClient != nil:
		log.Info("credential store: redis")
		return credStore.NewRedis(deps.redisClient.Client)
	default:
		log.Warn("credential store: in-memory; credentials are lost on restart")
		return credStore.NewInMemory()
	}
}

// buildResolver applies configured TTL overrides to the default allow-list.
func buildResolver(cfg config.Server) *cache.Resolver {
	rules := cache.DefaultRules()
	for i := range rules {
		if rules[i].Scope == cache.ScopeGlobal {
			rules[i].TTL = cfg.GlobalCacheTTL
		} else {
			rules[i].TTL = cfg.PerUserCacheTTL
		}
	}
	return cache.NewResolver(rules...)
}

// buildCacheStore prefers Redis so cache entries are shared across replicas.
func buildCacheStore(deps *dependencies, log *slog.Logger) relay.CacheStore {
	if deps.redisClient != nil {
		log.Info("response cache: redis")
		return cacheStore.NewRedis(deps.redisClient.Client)
	}
	log.Info("response cache: in-memory")
	return cacheStore.NewInMemory()
}

// RegisterHealthChecks wires readiness probes for the configured backends.
func (d *dependencies) RegisterHealthChecks(h *health.Handler) {
	if d.redisClient != nil {
		h.RegisterCheck("redis", d.redisClient.Health)
	}
	if d.dbPool != nil {
		h.RegisterCheck("database", d.dbPool.Health)
	}
}

// Close releases external connections.
func (d *dependencies) Close() {
	if d.redisClient != nil {
		d.redisClient.Close() //nolint:errcheck
	}
	if d.dbPool != nil {
		d.dbPool.Close() //nolint:errcheck
	}
}

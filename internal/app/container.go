package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/courtside-go/internal/config"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/metrics"
	"github.com/kapu/courtside-go/internal/prompt"
	"github.com/kapu/courtside-go/internal/server"
	"github.com/kapu/courtside-go/internal/service/ai"
	"github.com/kapu/courtside-go/internal/service/balldontlie"
	"github.com/kapu/courtside-go/internal/service/cache"
	"github.com/kapu/courtside-go/internal/service/database"
	"github.com/kapu/courtside-go/internal/service/dedup"
	"github.com/kapu/courtside-go/internal/service/social"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Container bundles the assembled proxy services.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Registry  *prometheus.Registry
	Ledger    dedup.Ledger
	Publisher *social.Publisher
	Reports   *ai.ReportService

	router  *server.Deps
	limiter *server.RateLimiter
	closers []func()
}

// Build assembles every collaborator the proxy serves. Missing collaborator
// credentials are not fatal: the affected endpoints answer with a
// configuration error. Backends selected explicitly (Redis, Postgres) must be
// reachable.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	// Ledger and games cache
	checks := map[string]func(context.Context) error{}
	var (
		ledger dedup.Ledger
		games  balldontlie.GamesCache = cache.NewGamesMemo(constants.CacheTTL.GamesListing)
	)
	switch cfg.Dedup.Backend {
	case config.DedupRedis:
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		checks["redis"] = func(ctx context.Context) error {
			if !cacheSvc.IsConnected(ctx) {
				return fmt.Errorf("redis ping failed")
			}
			return nil
		}
		ledger = dedup.NewRedisLedger(cacheSvc, cfg.Dedup.Retention)
		games = cacheSvc

	case config.DedupPostgres:
		postgresSvc, dbErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if dbErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", dbErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})
		checks["postgres"] = postgresSvc.Ping
		ledger = dedup.NewPostgresLedger(postgresSvc.GetDB(), cfg.Dedup.Retention)

	default:
		ledger = dedup.NewMemoryLedger(cfg.Dedup.Retention)
	}
	logger.Info("Post ledger ready",
		zap.String("backend", string(cfg.Dedup.Backend)),
		zap.Duration("retention", cfg.Dedup.Retention),
	)

	// Sports data
	bdl := balldontlie.NewClient(balldontlie.ClientConfig{
		APIKey:         cfg.BallDontLie.APIKey,
		BaseURL:        cfg.BallDontLie.BaseURL,
		RequestsPerMin: cfg.BallDontLie.RequestsPerMin,
		Timeout:        cfg.BallDontLie.Timeout,
	}, games, recorder, logger)
	if cfg.BallDontLie.APIKey == "" {
		logger.Warn("BALLDONTLIE_API_KEY is not set; requests will be sent unauthenticated")
	}
	profiles := balldontlie.NewProfileService(bdl, cfg.BallDontLie.ProfileDeadline, logger)

	// AI stack. A nil generator keeps the report endpoints up and failing with
	// a configuration error.
	var generator ai.TextGenerator
	if cfg.Gemini.APIKey != "" {
		modelManager, aiErr := ai.NewModelManager(ctx, ai.ModelManagerConfig{
			GeminiAPIKey:       cfg.Gemini.APIKey,
			OpenAIAPIKey:       cfg.OpenAI.APIKey,
			DefaultGeminiModel: cfg.Gemini.Model,
			DefaultOpenAIModel: cfg.OpenAI.Model,
			EnableFallback:     cfg.OpenAI.EnableFallback,
		}, logger)
		if aiErr != nil {
			return nil, fmt.Errorf("failed to create model manager: %w", aiErr)
		}
		generator = modelManager
	} else {
		logger.Warn("GOOGLE_API_KEY is not set; AI reports are disabled")
	}
	reports := ai.NewReportService(generator, prompt.NewPromptBuilder(), constants.APIConfig.AIGenerateTimeout, logger)

	// X
	xClient := social.NewClient(social.Config{
		APIKey:       cfg.X.APIKey,
		APISecret:    cfg.X.APISecret,
		AccessToken:  cfg.X.AccessToken,
		AccessSecret: cfg.X.AccessSecret,
		BaseURL:      cfg.X.BaseURL,
		TokenURL:     cfg.X.TokenURL,
	}, recorder, logger)
	publisher := social.NewPublisher(xClient, ledger, reports, recorder, logger)

	var limiter *server.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = server.NewRateLimiter(server.RateLimiterConfig{
			Rate:            rate.Limit(cfg.Server.RateLimitRPS),
			Burst:           cfg.Server.RateLimitBurst,
			CleanupInterval: 5 * time.Minute,
		}, logger)
		closers = append(closers, limiter.Stop)
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Ledger:    ledger,
		Publisher: publisher,
		Reports:   reports,
		router: &server.Deps{
			Players:        bdl,
			Games:          bdl,
			Profiles:       profiles,
			Reports:        reports,
			X:              xClient,
			Publisher:      publisher,
			Recorder:       recorder,
			Gatherer:       registry,
			Limiter:        limiter,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			StaticDir:      cfg.Server.StaticDir,
			Checks:         checks,
			Logger:         logger,
		},
		limiter: limiter,
		closers: closers,
	}, nil
}

// NewServer builds the HTTP server over the assembled router.
func (c *Container) NewServer() *server.Server {
	return server.NewServer(c.Config.Server.Port, server.NewRouter(*c.router), c.limiter, c.Logger)
}

// StartBackground runs the ledger sweeper until ctx is done.
func (c *Container) StartBackground(ctx context.Context) {
	go dedup.RunSweeper(ctx, c.Ledger, constants.DedupConfig.SweepInterval, c.Logger)
}

// Close releases backends in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/saikat7890/Lost-and-Found-System/internal/auth"
	"github.com/saikat7890/Lost-and-Found-System/internal/cache"
	"github.com/saikat7890/Lost-and-Found-System/internal/config"
	"github.com/saikat7890/Lost-and-Found-System/internal/event"
	handler "github.com/saikat7890/Lost-and-Found-System/internal/handler/http"
	"github.com/saikat7890/Lost-and-Found-System/internal/imaging"
	"github.com/saikat7890/Lost-and-Found-System/internal/media"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository/memory"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository/postgres"
	"github.com/saikat7890/Lost-and-Found-System/internal/service"
	"github.com/saikat7890/Lost-and-Found-System/internal/storage"
	memstore "github.com/saikat7890/Lost-and-Found-System/internal/storage/memory"
	"github.com/saikat7890/Lost-and-Found-System/internal/storage/remote"
	"github.com/saikat7890/Lost-and-Found-System/migrations"
	"github.com/saikat7890/Lost-and-Found-System/pkg/database"
	"github.com/saikat7890/Lost-and-Found-System/pkg/health"
	"github.com/saikat7890/Lost-and-Found-System/pkg/httpclient"
	pkgkafka "github.com/saikat7890/Lost-and-Found-System/pkg/kafka"
	"github.com/saikat7890/Lost-and-Found-System/pkg/middleware"
	"github.com/saikat7890/Lost-and-Found-System/pkg/tracing"
)

// ServiceName identifies the item service in logs, metrics and traces.
const ServiceName = "item-service"

// Version is reported to the tracing backend.
var Version = "dev"

// App wires together all dependencies and runs the item service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	orchestrator   *media.Orchestrator
	httpServer     *http.Server
	cancel         context.CancelFunc
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	healthHandler := health.NewHandler()

	repo, err := a.itemRepository(ctx, healthHandler)
	if err != nil {
		return err
	}

	if cfg.RedisHost != "" {
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		repo = cache.NewCachedRepository(repo, cache.NewItemCache(client, cfg.ItemCacheTTL()), logger)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("item cache enabled",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Duration("ttl", cfg.ItemCacheTTL()),
		)
	}

	store, mediaHandler := a.objectStore()
	store = storage.NewTransformed(store, imaging.NewFitter(cfg.MediaMaxWidth, cfg.MediaMaxHeight, cfg.MediaJPEGQuality))

	a.orchestrator = media.NewOrchestrator(store, media.Config{
		OpTimeout:           cfg.MediaOpTimeout(),
		CompensateOnFailure: cfg.MediaCompensate,
	}, logger)

	var opts []service.Option
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		opts = append(opts, service.WithEvents(event.NewProducer(a.producer, logger)))
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	itemService := service.NewItemService(repo, a.orchestrator, logger, opts...)

	// The limiter's cleanup loop lives until shutdown.
	limiterCtx, limiterCancel := context.WithCancel(context.Background())
	a.cancel = limiterCancel
	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(limiterCtx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:      ServiceName,
		Items:            itemService,
		Health:           healthHandler,
		VerifyToken:      auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer).Verify,
		CORS:             middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins),
		RateLimiter:      limiter,
		Media:            mediaHandler,
		MediaCacheMaxAge: cfg.MediaCacheMaxAge,
		PprofCIDRs:       cfg.PprofAllowedCIDRs,
		Logger:           logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return nil
}

// itemRepository opens the configured document store.
func (a *App) itemRepository(ctx context.Context, healthHandler *health.Handler) (repository.ItemRepository, error) {
	cfg, logger := a.cfg, a.logger

	if cfg.ItemStore == config.StoreMemory {
		logger.Warn("using in-memory item store; postings are lost on restart")
		return memory.New(), nil
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return postgres.NewItemRepository(pool), nil
}

// objectStore builds the configured blob backend. The memory backend also
// returns the handler that serves its blobs.
func (a *App) objectStore() (storage.Store, http.Handler) {
	cfg := a.cfg

	if cfg.MediaBackend == config.MediaRemote {
		client := httpclient.NewCircuitBreakerClient(httpclient.New(httpclient.DefaultConfig()), cfg.CircuitBreaker(), a.logger)
		a.logger.Info("using remote object store", slog.String("url", cfg.MediaRemoteURL))
		return remote.New(client, remote.Config{
			BaseURL: cfg.MediaRemoteURL,
			APIKey:  cfg.MediaRemoteAPIKey,
			Folder:  cfg.MediaFolder,
		}), nil
	}

	a.logger.Warn("using in-memory object store; images are lost on restart")
	store := memstore.New(cfg.MediaBaseURL, cfg.MediaFolder)
	return store, store.Handler()
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. In-flight requests drain first,
// then background image removals, then the backing connections close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	a.orchestrator.Wait()

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases every opened connection. It tolerates a partially
// initialized App.
func (a *App) closeResources() error {
	var errs []error

	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("kafka producer: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/catalog"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/config"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/event"
	handler "github.com/akshansh2332/driftclic-aesthetic-studio/internal/handler/http"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository/breaker"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository/memory"
	redisrepo "github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository/redis"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/database"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/health"
	pkgkafka "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/kafka"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/middleware"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/tracing"
)

const (
	serviceName      = "storefront"
	slowRedisCommand = 50 * time.Millisecond
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	memRepo        *memory.SessionRepository
	sessions       *service.SessionService
	events         *handler.EventsHandler
	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	stopBackground context.CancelFunc
	background     sync.WaitGroup
	shutdownOnce   sync.Once
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	// Load the catalog.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, a.abort(fmt.Errorf("load catalog: %w", err))
	}
	logger.Info("catalog loaded",
		slog.Int("products", cat.Len()),
		slog.String("source", catalogSource(cfg.CatalogPath)),
	)

	// Session repository.
	repo, err := a.sessionRepository(ctx)
	if err != nil {
		return nil, a.abort(err)
	}

	// Kafka producer.
	opts := service.Options{TTL: cfg.SessionTTL()}
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		kafkaCfg.Async = true
		a.producer = pkgkafka.NewProducer(kafkaCfg, logger)
		opts.Events = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.sessions = service.NewSessionService(cat, repo, logger, opts)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("catalog", func(context.Context) error {
		if cat.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})
	if a.rdb != nil {
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	a.events = handler.NewEventsHandler(a.sessions, logger, originChecker(cfg.CORSAllowedOrigins))
	router := handler.NewRouter(cat, a.sessions, a.events, healthHandler, logger, handler.RouterConfig{
		CORS:             cors,
		CatalogCacheSecs: cfg.CatalogCacheSecs,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// sessionRepository builds the configured session backend.
func (a *App) sessionRepository(ctx context.Context) (repository.SessionRepository, error) {
	ttl := a.cfg.SessionTTL()

	if a.cfg.SessionBackend != config.BackendRedis {
		a.memRepo = memory.NewSessionRepository(ttl)
		a.logger.Info("using in-memory session store")
		return a.memRepo, nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = a.cfg.RedisAddr
	redisCfg.Password = a.cfg.RedisPass
	redisCfg.DB = a.cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	database.SetSlowCommandLogging(slowRedisCommand, a.logger)
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, rdb, serviceName); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register redis pool metrics: %w", err)
		}
	}

	return breaker.NewSessionRepository(
		redisrepo.NewSessionRepository(rdb, ttl),
		breaker.DefaultConfig("session-store"),
		a.logger,
	), nil
}

// Handler returns the HTTP handler serving the storefront API.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and background workers and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.startBackground(ctx)

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
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// startBackground launches snapshot persistence and the session janitor.
func (a *App) startBackground(ctx context.Context) {
	bgCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopBackground = stop

	var sweepers []func(context.Context) int
	if a.memRepo != nil {
		sweepers = append(sweepers, a.memRepo.Sweep)
	}

	a.background.Add(2)
	go func() {
		defer a.background.Done()
		a.sessions.Run(bgCtx)
	}()
	go func() {
		defer a.background.Done()
		a.sessions.RunJanitor(bgCtx, a.cfg.SweepInterval(), sweepers...)
	}()
}

// Shutdown gracefully stops all components. It is safe to call more than once.
func (a *App) Shutdown() error {
	a.shutdownOnce.Do(a.shutdown)
	return nil
}

func (a *App) shutdown() {
	a.logger.Info("shutting down application...")

	// Close change streams first; they are not tracked by the HTTP server.
	a.events.CloseAll(time.Second)

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Stop background workers; the persister writes what is still pending.
	if a.stopBackground != nil {
		a.stopBackground()
		a.background.Wait()
	} else if failed := a.sessions.Flush(shutdownCtx); failed > 0 {
		a.logger.Warn("session snapshots lost on shutdown", slog.Int("count", failed))
	}

	a.closeClients(shutdownCtx)
	a.logger.Info("application shutdown complete")
}

// abort releases whatever NewApp acquired before failing with err.
func (a *App) abort(err error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.closeClients(ctx)
	return err
}

func (a *App) closeClients(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// originChecker mirrors the CORS origin policy for WebSocket upgrades.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}
	match := middleware.OriginMatcher(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || match(origin)
	}
}

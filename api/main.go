package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/movement-management/internal/config"
	"github.com/rogerio-castellano/movement-management/internal/db"
	"github.com/rogerio-castellano/movement-management/internal/events"
	"github.com/rogerio-castellano/movement-management/internal/http/handlers"
	rl "github.com/rogerio-castellano/movement-management/internal/http/rate_limiter"
	"github.com/rogerio-castellano/movement-management/internal/http/router"
	"github.com/rogerio-castellano/movement-management/internal/logging"
	"github.com/rogerio-castellano/movement-management/internal/redissvc"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rogerio-castellano/movement-management/internal/service"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// @title Movement Management API
// @version 1.0
// @description REST API for managing financial movements of clients and products.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "json")
		bootLogger.Fatal().Err(err).Msg("could not load configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	health := handlers.NewHealthHandler(logger)

	var (
		movementRepo repo.MovementRepository
		metricsRepo  repo.MetricsRepository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
		logger.Info().Msg("connected to PostgreSQL")

		movementRepo = repo.NewPostgresMovementRepository(database)
		metricsRepo = repo.NewPostgresMetricsRepository(database)
		health.Register("database", database.PingContext)
	default:
		memory := repo.NewInMemoryMovementRepository()
		movementRepo = memory
		metricsRepo = repo.NewInMemoryMetricsRepository(memory)
		logger.Warn().Msg("using in-memory storage, movements are lost on restart")
	}

	if cfg.RedisAddr != "" {
		redisService, err := redissvc.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisService.Close()

		movementRepo = repo.NewCachedMovementRepository(movementRepo, redisService.Rdb(), cfg.CacheTTL, logger)
		health.Register("redis", redisService.Ping)
		logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("movement cache enabled")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()

		publisher = amqpPublisher
		health.Register("rabbitmq", amqpPublisher.Ping)
		logger.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing movement events")
	}

	movementService := service.NewMovementService(movementRepo, publisher, logger)

	opts := router.Options{
		Movements:  handlers.NewMovementHandler(movementService, logger),
		Metrics:    handlers.NewMetricsHandler(metricsRepo, logger),
		Health:     health,
		Logger:     logger,
		TrustProxy: cfg.TrustProxy,
	}
	if cfg.AuthEnabled {
		opts.JWTSecret = []byte(cfg.JWTSecret)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.RateLimitRPS > 0 {
		limiter := rl.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
		opts.Limiter = limiter
		g.Go(func() error {
			return limiter.StartVisitorCleanupLoop(ctx)
		})
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

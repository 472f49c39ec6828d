package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fieldforce/internal/agent/cache"
	"fieldforce/internal/agent/events"
	agenthandler "fieldforce/internal/agent/handler"
	"fieldforce/internal/agent/service"
	"fieldforce/internal/agent/store"
	"fieldforce/internal/platform/config"
	"fieldforce/internal/platform/health"
	"fieldforce/internal/platform/kafka"
	"fieldforce/internal/platform/kafka/producer"
	"fieldforce/internal/platform/logger"
	"fieldforce/internal/platform/metrics"
	"fieldforce/internal/platform/redis"
	"fieldforce/internal/platform/tracer"
	httptransport "fieldforce/internal/transport/http"
	request "fieldforce/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fieldforce: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	log.Info("initializing fieldforce",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"db_driver", cfg.Database.Driver,
		"cache_enabled", cfg.Redis.URL != "",
		"events_enabled", len(cfg.Kafka.Brokers) > 0,
	)
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set; agent write endpoints are locked")
	}

	healthHandler := health.New(cfg.Environment)
	m := metrics.New()
	g, ctx := errgroup.WithContext(ctx)

	agentStore, closeStore, err := openStore(ctx, cfg.Database, log, healthHandler)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []service.Option{
		service.WithMetrics(m),
		service.WithTracer(tracer.NewOTel()),
	}

	redisClient, err := redis.New(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown
		healthHandler.RegisterCheck("redis", redisClient.Health)
		opts = append(opts, service.WithCache(cache.NewRedis(redisClient, cfg.Redis.CacheTTL,
			cache.WithMetrics(m),
			cache.WithLogger(log),
		)))
		g.Go(func() error { return redisClient.RunPoolStats(ctx, poolStatsInterval) })
	}

	publisher, closePublisher, err := openPublisher(ctx, cfg.Kafka, log, healthHandler)
	if err != nil {
		return err
	}
	defer closePublisher()
	opts = append(opts, service.WithPublisher(publisher))

	svc := service.New(agentStore, log, opts...)
	router := httptransport.NewRouter(httptransport.Deps{
		Agents:     agenthandler.New(svc, log),
		Health:     healthHandler,
		AdminToken: cfg.AdminToken,
		Metrics:    request.NewMetrics(),
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger, h *health.Handler) (service.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory agent store; records are lost on restart")
		return store.NewInMemory(), func() {}, nil
	}
	st, pool, err := store.OpenSQL(ctx, cfg.Driver, cfg.URL, cfg.AutoMigrate, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	h.RegisterCheck("database", pool.Health)
	return st, func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing database pool", "error", err)
		}
	}, nil
}

// openPublisher returns a Kafka publisher when brokers are configured and a log-only
// publisher otherwise.
func openPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger, h *health.Handler) (service.Publisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		return events.NewLogPublisher(log), func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, cfg.Brokers, kafka.TopicSpec{
		Name:              cfg.EventsTopic,
		Partitions:        3,
		ReplicationFactor: 1,
	}); err != nil {
		return nil, nil, err
	}
	p, err := producer.New(producer.DefaultConfig(cfg.Brokers), log)
	if err != nil {
		return nil, nil, err
	}
	h.RegisterCheck("kafka", p.Health)
	return events.NewKafkaPublisher(p, cfg.EventsTopic), func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = p.Close(ctx)
	}, nil
}

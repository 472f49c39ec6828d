package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"fieldforce/internal/agent/events"
	"fieldforce/internal/agent/service"
	"fieldforce/internal/agent/store"
	"fieldforce/internal/platform/config"
	"fieldforce/internal/platform/kafka/producer"
	"fieldforce/internal/platform/logger"
	"fieldforce/internal/platform/metrics"
)

const producerCloseTimeout = 10 * time.Second

// deps holds what the write commands share.
type deps struct {
	Config  config.Server
	Service *service.Service
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// withDeps loads config, opens the configured store and event publisher, then calls fn.
// It handles cleanup automatically.
func withDeps(cmd *cobra.Command, fn func(*deps) error) error {
	ctx := cmd.Context()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	// Process-local registry: agentctl exposes no metrics endpoint.
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	var agentStore service.Store
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("DB_DRIVER is memory; records are validated and then discarded")
		agentStore = store.NewInMemory()
	} else {
		st, pool, err := store.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.AutoMigrate, log)
		if err != nil {
			return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
		}
		defer pool.Close() //nolint:errcheck // shutdown
		agentStore = st
	}

	opts := []service.Option{service.WithMetrics(m)}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return fmt.Errorf("creating kafka producer: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), producerCloseTimeout)
			defer cancel()
			_ = p.Close(closeCtx)
		}()
		opts = append(opts, service.WithPublisher(events.NewKafkaPublisher(p, cfg.Kafka.EventsTopic)))
	}

	return fn(&deps{
		Config:  cfg,
		Service: service.New(agentStore, log, opts...),
		Metrics: m,
		Logger:  log,
	})
}

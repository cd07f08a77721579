package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	casePersistence "github.com/casetrack/casetrack/internal/casefile/infrastructure/persistence"
	"github.com/casetrack/casetrack/internal/notification"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/eventbus"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
	"github.com/casetrack/casetrack/pkg/config"
	"github.com/casetrack/casetrack/pkg/observability"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the outbox processor and event consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.IsProduction())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			logger.Info("connected to database")

			outboxRepo := outbox.NewPostgresRepository(pool)

			var publisher eventbus.Publisher
			rabbitPublisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
			if err != nil {
				if cfg.IsProduction() {
					return err
				}
				// Local mode: dispatch outbox messages straight to the
				// consumers instead of going through the broker.
				logger.Warn("rabbitmq not available, using in-process event bus", "error", err)
				bus := eventbus.NewInProcessEventBus(logger)
				registerNotificationConsumers(bus, pool, logger)
				publisher = bus
			} else {
				publisher = rabbitPublisher
				defer rabbitPublisher.Close()
			}

			if cfg.OutboxProcessorEnabled {
				processorCfg := outbox.DefaultProcessorConfig()
				processorCfg.PollInterval = cfg.OutboxPollInterval
				processorCfg.BatchSize = cfg.OutboxBatchSize
				processorCfg.MaxRetries = cfg.OutboxMaxRetries

				processor := outbox.NewProcessor(outboxRepo, publisher, processorCfg, logger)
				if err := processor.Start(ctx); err != nil {
					return err
				}
				defer processor.Stop()
			}

			// Notification consumers only run when the broker is reachable.
			if rabbitPublisher != nil {
				if err := startConsumers(ctx, cfg, pool, logger); err != nil {
					logger.Warn("event consumers not started", "error", err)
				}
			}

			if cfg.WorkerHealthAddr != "" {
				startHealthServer(ctx, cfg.WorkerHealthAddr, pool, logger)
			}

			<-ctx.Done()
			logger.Info("worker shutting down")
			return nil
		},
	}
}

// consumerTarget is implemented by both the RabbitMQ consumer and the
// in-process bus.
type consumerTarget interface {
	RegisterConsumer(consumer eventbus.EventConsumer)
}

func registerNotificationConsumers(target consumerTarget, pool *pgxpool.Pool, logger *slog.Logger) {
	assignmentRepo := casePersistence.NewPostgresAssignmentRepository(pool)
	notifier := notification.NewLogNotifier(logger)
	target.RegisterConsumer(notification.NewTransitionConsumer(assignmentRepo, notifier, logger))
	target.RegisterConsumer(notification.NewAssignmentConsumer(notifier, logger))
}

func startConsumers(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) error {
	registry := eventbus.NewConsumerRegistry(logger)
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: "casetrack.notifications",
		Exchange:  eventbus.ExchangeName,
		Logger:    logger,
	}, registry)
	if err != nil {
		return err
	}

	registerNotificationConsumers(consumer, pool, logger)

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("event consumer stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = consumer.Close()
	}()
	return nil
}

func startHealthServer(ctx context.Context, addr string, pool *pgxpool.Pool, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready", "error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

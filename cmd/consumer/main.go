package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"example.com/greenpoints/internal/app"
	"example.com/greenpoints/internal/config"
	"example.com/greenpoints/internal/consumer"
	httptransport "example.com/greenpoints/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()

	if err := app.CheckConsumer(cfg); err != nil {
		logger.WithError(err).Fatal("consumer is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open backends")
	}
	defer deps.Close()

	handler := consumer.NewEventLogHandler(deps.Store)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.KafkaTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
	defer reader.Close()

	entry := logger.WithFields(logrus.Fields{"topic": cfg.KafkaTopic, "group": cfg.ConsumerGroupID})
	proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(entry))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler())
		if err := httptransport.Serve(ctx, metricsSrv, 10*time.Second, entry); err != nil {
			entry.WithError(err).Warn("metrics server error")
		}
	}()

	entry.Info("consumer started")
	runErr := proc.Run(ctx)
	stop()
	wg.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		// Exit non-zero so the supervisor restarts us from the last committed offset.
		reader.Close()
		deps.Close()
		entry.WithError(runErr).Fatal("consumer stopped with error")
	}
	entry.Info("consumer shutdown complete")
}

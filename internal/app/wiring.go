// Package app builds the dependencies shared by the GreenPoints binaries.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"example.com/greenpoints/internal/cache"
	"example.com/greenpoints/internal/config"
	"example.com/greenpoints/internal/docstore"
	"example.com/greenpoints/internal/domain"
	"example.com/greenpoints/internal/events"
	"example.com/greenpoints/internal/persistence/postgres"
)

// Store is a document store that can also report its health.
type Store interface {
	docstore.Store
	docstore.Inspector
}

// Deps holds the opened backends. Close releases them in reverse order.
type Deps struct {
	Store     Store
	Redis     redis.UniversalClient
	Publisher events.Publisher

	closers []func()
}

// Open connects the backends named by cfg. Postgres is used when DATABASE_URL is set,
// otherwise an in-memory store. Redis and Kafka are optional.
func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Deps, error) {
	d := &Deps{Publisher: events.NoopPublisher{}}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)

		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		d.Store = store
		logger.Info("using postgres document store")
	} else {
		d.Store = docstore.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory document store")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		d.Redis = client
		d.closers = append(d.closers, func() { _ = client.Close() })
		logger.WithField("addr", opts.Addr).Info("using redis cache")
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		d.Publisher = publisher
		d.closers = append(d.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.WithError(err).Warn("kafka writer close failed")
			}
		})
		logger.WithField("topic", cfg.KafkaTopic).Info("publishing events to kafka")
	}

	return d, nil
}

// CheckConsumer reports the settings the event log consumer cannot run without.
// The consumer commits offsets once an event is stored, so the store must outlive the process.
func CheckConsumer(cfg config.Config) error {
	var missing []string
	if len(cfg.KafkaBrokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// Service builds the domain service over the opened backends.
func (d *Deps) Service(cfg config.Config, logger logrus.FieldLogger) *domain.Service {
	opts := []domain.Option{
		domain.WithPublisher(d.Publisher),
		domain.WithLogger(logger),
	}
	if d.Redis != nil {
		opts = append(opts, domain.WithCache(cache.NewRedisCache(d.Redis, true), cfg.CacheTTL))
	}
	return domain.NewService(d.Store, opts...)
}

// Close releases every opened backend.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

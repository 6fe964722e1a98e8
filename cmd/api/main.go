package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/greenpoints/internal/api"
	"example.com/greenpoints/internal/app"
	"example.com/greenpoints/internal/config"
	httptransport "example.com/greenpoints/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open backends")
	}
	defer deps.Close()

	service := deps.Service(cfg, logger)

	handler := api.NewHandler(service,
		api.WithInspector(deps.Store),
		api.WithDatabaseEnv(cfg.DatabaseURL != "", cfg.DatabaseName != ""),
		api.WithLogger(logger),
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	middlewares := []httptransport.Middleware{
		httptransport.RequestLogger(logger),
		httptransport.CORS(cfg.CORSAllowedOrigins),
	}
	if deps.Redis != nil {
		limiter := redis_rate.NewLimiter(deps.Redis)
		middlewares = append(middlewares, httptransport.RateLimit(limiter, cfg.RateLimitPerMinute, cfg.TrustProxyHeaders, logger))
	}

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), httptransport.Chain(mux, middlewares...))

	logger.WithField("address", cfg.HTTPAddress).Info("greenpoints api starting")
	if err := httptransport.Serve(ctx, server, 15*time.Second, logger); err != nil {
		logger.WithError(err).Error("server error")
	}
}

package main

import (
	"context"
	"os"

	"example.com/greenpoints/internal/app"
	"example.com/greenpoints/internal/config"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()
	warnEphemeral(cfg, logger)

	ctx := context.Background()
	deps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open backends")
	}

	service := deps.Service(cfg, logger)
	cliApp := newApp(service, os.Stdout)

	runErr := cliApp.RunContext(ctx, os.Args)
	deps.Close()
	if runErr != nil {
		logger.WithError(runErr).Fatal("command failed")
	}
}

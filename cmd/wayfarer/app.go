package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkordes/wayfarer/internal/config"
	"github.com/pkordes/wayfarer/internal/location"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
)

// newLogger writes text logs to stderr so they never mix with replies.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// gatewayFromEnv builds the generation gateway from the environment.
func gatewayFromEnv(ctx context.Context) (nlg.Gateway, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	gw, err := nlg.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("create gateway: %w", err)
	}
	return gw, cfg, nil
}

// newOrchestrator wires an orchestrator over in-memory stores.
func newOrchestrator(gw nlg.Gateway, cfg config.Config, logger *slog.Logger) *service.Orchestrator {
	guard := nlg.NewGuard(gw, nlg.WithTimeout(cfg.NLGTimeout), nlg.WithLogger(logger))
	stores := service.Stores{
		Sessions: repo.NewMemorySessionStore(0),
		Trips:    repo.NewMemoryTripStateStore(),
		Records:  repo.NewMemoryTripRecordStore(),
	}
	return service.NewOrchestrator(stores, guard, location.Directory{}, service.WithLogger(logger))
}

// Package main is the entry point for the Wayfarer API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/joho/godotenv"

	"github.com/pkordes/wayfarer/internal/config"
	"github.com/pkordes/wayfarer/internal/handler"
	"github.com/pkordes/wayfarer/internal/location"
	"github.com/pkordes/wayfarer/internal/metrics"
	"github.com/pkordes/wayfarer/internal/middleware"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
	"github.com/pkordes/wayfarer/migrations"
)

func main() {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	m := metrics.New()

	// --- Text generation --------------------------------------------------
	gw, err := nlg.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("failed to create text generation gateway", "error", err)
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set; serving fallback replies only")
	}
	guard := nlg.NewGuard(gw,
		nlg.WithTimeout(cfg.NLGTimeout),
		nlg.WithLogger(logger),
		nlg.WithObserver(m),
	)

	// --- Stores -----------------------------------------------------------
	records, closeRecords, err := openRecordStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open trip record store", "error", err)
		os.Exit(1)
	}
	defer closeRecords()

	stores := service.Stores{
		Sessions: repo.NewMemorySessionStore(cfg.SessionTTL),
		Trips:    repo.NewMemoryTripStateStore(),
		Records:  records,
	}
	orch := service.NewOrchestrator(stores, guard, location.Directory{},
		service.WithLogger(logger),
		service.WithPhaseObserver(m),
	)

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, SlogLogger, Recoverer, CORS, body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(orch, logger).Routes())
	r.Handle("/metrics", m.Handler())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: serverWriteTimeout(cfg.NLGTimeout),
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// unboundedWriteTimeout applies when generation calls carry no deadline of
// their own.
const unboundedWriteTimeout = 2 * time.Minute

// serverWriteTimeout covers a pre-trip plan that waits on several generation
// calls, each bounded by nlgTimeout. A zero nlgTimeout disables the per-call
// deadline, so the server falls back to unboundedWriteTimeout.
func serverWriteTimeout(nlgTimeout time.Duration) time.Duration {
	if nlgTimeout <= 0 {
		return unboundedWriteTimeout
	}
	return nlgTimeout*3 + 10*time.Second
}

// openRecordStore returns the Postgres record store when dsn is set, after
// applying pending migrations, and an in-memory store otherwise.
func openRecordStore(ctx context.Context, dsn string) (repo.TripRecordStore, func(), error) {
	if dsn == "" {
		slog.Warn("DATABASE_URL not set; trip records are kept in memory")
		return repo.NewMemoryTripRecordStore(), func() {}, nil
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	applied, err := migrations.Up(ctx, sqlDB)
	sqlDB.Close()
	if err != nil {
		return nil, nil, err
	}
	slog.Info("database migrations applied", "count", applied)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("database connection established")
	return repo.NewPgTripRecordStore(pool), pool.Close, nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	web "classroll/internal/adapters/http"
	"classroll/internal/adapters/storage"
	"classroll/internal/adapters/storage/kv"
	"classroll/internal/application/app"
	"classroll/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s backend: %v", cfg.Backend, err)
	}
	defer closeStore()

	a, err := app.New(ctx, store, app.Options{LoginDelay: loginDelay(cfg.LoginDelay)})
	if err != nil {
		log.Fatalf("failed to load application state: %v", err)
	}

	mux := web.NewMux(a, web.Options{
		CSRFKey: cfg.CSRFKey,
		Secure:  cfg.IsProduction(),
		Health:  health,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err.Error())
		}
	}()

	slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("server_stop")
}

// setupLogging installs the default slog handler: JSON in production, text otherwise.
func setupLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// loginDelay maps an explicit zero to "no delay"; app.Options treats zero as the default.
func loginDelay(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// openStore builds the configured persistence backend, a health probe for
// /healthz and a close func.
func openStore(ctx context.Context, cfg config.Config) (kv.Store, func(context.Context) error, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		slog.Warn("store_event", "event", "memory_backend", "hint", "state is lost on restart")
		return kv.NewMemoryStore(), nil, func() {}, nil

	case config.BackendRedis:
		client := kv.NewRedisClient(cfg.RedisAddr)
		rs := kv.NewRedisStore(client, cfg.RedisPrefix)
		if !rs.Healthy(ctx) {
			client.Close()
			return nil, nil, nil, fmt.Errorf("redis unreachable at %s", cfg.RedisAddr)
		}
		health := func(ctx context.Context) error {
			if !rs.Healthy(ctx) {
				return errors.New("redis unreachable")
			}
			return nil
		}
		return rs, health, func() { client.Close() }, nil

	default:
		db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
		if err != nil {
			return nil, nil, nil, err
		}
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("database unreachable: %w", err)
		}
		if err := storage.InitDB(db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		timed := storage.NewTimedDB(db, cfg.SlowQuery)
		return kv.NewSQLiteStore(timed), timed.Ping, func() { timed.Close() }, nil
	}
}

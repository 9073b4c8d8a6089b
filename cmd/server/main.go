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

	"github.com/redis/go-redis/v9"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/history"
	"impostor/internal/limiter"
	"impostor/internal/metrics"
	httpTransport "impostor/internal/transport/http"
	"impostor/internal/transport/ws"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting impostor game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"redis", cfg.RedisEnabled(),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	words := app.DefaultWords
	if cfg.Game.WordListPath != "" {
		loaded, err := app.LoadWords(cfg.Game.WordListPath)
		if err != nil {
			return err
		}
		words = loaded
	}
	logger.Info("word list ready", "words", len(words))

	deps := httpTransport.Deps{}
	var sink app.OutcomeSink
	var joinLimiter ws.Limiter

	if cfg.RedisEnabled() {
		rdb, err := connectRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		store, err := history.NewStore(rdb, cfg.Redis.Prefix, cfg.Redis.HistoryLimit)
		if err != nil {
			return err
		}
		sink = store
		deps.History = store

		// A nil *JoinLimiter must not end up inside the interface
		if l := limiter.NewJoinLimiter(rdb, limiter.Config{
			Prefix:      cfg.Redis.Prefix,
			MaxAttempts: cfg.Redis.JoinRateMax,
			Window:      cfg.Redis.JoinRateWindow,
		}); l != nil {
			joinLimiter = l
		}
	}

	outcomes := app.NewOutcomeDispatcher(sink, cfg.Game.OutcomeBuffer, logger)
	defer outcomes.Close()

	hub := ws.NewHub(logger)
	defer hub.Close()

	session := app.NewSession(app.SessionConfig{
		Words:    words,
		Outcomes: outcomes,
	}, hub, logger)

	collector := metrics.NewCollector()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := collector.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	exporter, err := metrics.NewExporter(collector.Provider().Meter("impostor"), session)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	defer exporter.Close()

	deps.Room = session
	deps.Hub = hub
	deps.Metrics = collector
	deps.WebSocket = ws.NewHandler(session, hub, ws.HandlerConfig{
		MaxNameLength: cfg.Game.MaxNameLength,
		Limiter:       joinLimiter,
	}, logger)

	server := httpTransport.NewServer(cfg, deps, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	return nil
}

func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/server"
)

const shutdownTimeout = 5 * time.Second

func getEnvOrDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "yes", "on", "true", "1":
		return true
	}
	return false
}

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := logging.Setup(logging.Options{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shelfd: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := serve(ctx, logger); err != nil {
		logger.Error("aborting", slog.Any("error", err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, logger *slog.Logger) error {
	latency, err := time.ParseDuration(getEnvOrDefault("LATENCY", "0s"))
	if err != nil {
		return fmt.Errorf("parse LATENCY: %w", err)
	}
	if latency == 0 {
		latency = -1
	}

	opts := courier.SimulatedOptions{Latency: latency, Logger: logger}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pool, err := library.OpenPool(ctx, dsn, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := library.NewPostgres(pool, 0)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		next, err := repo.NextID(ctx)
		if err != nil {
			return err
		}
		opts.Repository = repo
		opts.FirstID = next
		logger.Info("using postgres library", slog.Int("next_id", next))
	} else {
		logger.Info("using in-memory library")
	}

	srv := &http.Server{
		Addr: getEnvOrDefault("BIND_ADDR", ":7488"),
		Handler: server.Handler(server.Options{
			Courier:   courier.NewSimulated(opts),
			Logger:    logger,
			DebugMode: getBoolEnv("DEBUG_MODE"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

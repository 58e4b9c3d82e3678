package library

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

// NewTracer forwards pgx query logs to logger. Query arguments and backend
// pids are dropped; everything pgx reports below warn becomes debug.
func NewTracer(logger *slog.Logger) *tracelog.TraceLog {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "pgx"))

	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, l tracelog.LogLevel, msg string, data map[string]any) {
			lvl, known := traceLevel(l)
			if !logger.Enabled(ctx, lvl) {
				return
			}
			attrs := traceAttrs(data)
			if !known {
				attrs = append(attrs, slog.Any("pgx_level", l))
			}
			logger.LogAttrs(ctx, lvl, msg, attrs...)
		}),
		LogLevel: tracelog.LogLevelDebug,
	}
}

func traceLevel(l tracelog.LogLevel) (slog.Level, bool) {
	switch l {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug, tracelog.LogLevelInfo:
		return slog.LevelDebug, true
	case tracelog.LogLevelWarn:
		return slog.LevelWarn, true
	case tracelog.LogLevelError:
		return slog.LevelError, true
	default:
		return slog.LevelError, false
	}
}

func traceAttrs(data map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(data))
	for k, v := range data {
		switch k {
		case "args", "pid":
		default:
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
	return attrs
}

// OpenPool connects to dsn with query tracing routed to logger.
func OpenPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.Tracer = NewTracer(logger)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultHealthInterval = 5 * time.Second
	maxBackoff            = 30 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

// StartHealthPoller launches a background goroutine that pings shelfd until
// ctx is cancelled, backing off while it is unreachable. It returns
// immediately.
func StartHealthPoller(ctx context.Context, p pinger, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	go pollHealth(ctx, p, interval, logger)
}

func pollHealth(ctx context.Context, p pinger, interval time.Duration, logger *slog.Logger) {
	failures := 0
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := p.Ping(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			failures++
			if failures == 1 {
				logger.Warn("shelfd unreachable", slog.Any("error", err))
			} else {
				logger.Debug("shelfd still unreachable",
					slog.Int("failures", failures),
					slog.Any("error", err))
			}
		case failures > 0:
			logger.Info("shelfd reachable again", slog.Int("failed_checks", failures))
			failures = 0
		}
		timer.Reset(calculateBackoff(failures, interval))
	}
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

package flow

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = time.Minute

// StartSweeper runs a background goroutine that periodically expires idle
// conversations from the registry.
func StartSweeper(ctx context.Context, reg *Registry, ttl time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Conversation sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if expired := reg.CloseIdle(time.Now(), ttl); expired > 0 {
					slog.Info("Conversation sweep completed", "expired", expired, "remaining", reg.Count())
				}
			case <-ctx.Done():
				slog.Info("Conversation sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

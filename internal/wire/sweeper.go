package wire

import (
	"context"
	"log/slog"
	"time"
)

// startSweeper drops expired idempotency records every interval until ctx is
// cancelled. Replays only need to survive a client's retry window, so the
// table is not allowed to grow without bound.
func startSweeper(ctx context.Context, interval time.Duration, purge func(context.Context) (int64, error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := purge(ctx)
				if err != nil {
					slog.Error("sweeper: purge idempotency records failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("sweeper: purged idempotency records", "count", n)
				}
			}
		}
	}()
}

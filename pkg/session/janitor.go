package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Janitor calls store.Cleanup every interval until ctx is done.
// It always returns nil so it can run inside an errgroup next to a server.
func Janitor(ctx context.Context, store Store, interval time.Duration) error {
	logger := log.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions removed", "count", n, "remaining", store.Len())
			}
		}
	}
}

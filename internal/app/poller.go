package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/checklist/internal/logging"
)

// maxBackoff caps the delay between polls after repeated failures.
const maxBackoff = 30 * time.Second

// Refresher re-reads the collection. *session.Session implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartPoller launches a background goroutine that refreshes at the given
// interval, backing off while reads fail. It returns immediately. The
// returned channel closes when the poller exits; it is nil when interval is
// not positive and polling is disabled.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	if interval <= 0 {
		return nil
	}
	logger = logging.OrDiscard(logger)
	done := make(chan struct{})

	go func() {
		defer close(done)
		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				logger.Warn("poll failed", "error", err, "failures", failures)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
	return done
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff. An interval already above the cap is left as is.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	d := base << failures
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

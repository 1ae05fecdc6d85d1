package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper removes sessions past their TTL.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// SweepSessionsDeps holds dependencies for SweepSessions.
type SweepSessionsDeps struct {
	Store SessionSweeper
	Now   func() time.Time // optional: defaults to time.Now
}

// ExecuteSweepSessions deletes expired sessions once.
// PRE: none
// POST: no stored session is older than the TTL at Now
func ExecuteSweepSessions(ctx context.Context, deps SweepSessionsDeps) (int, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	n, err := deps.Store.DeleteExpired(ctx, now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("auth_event", "event", "sessions_expired", "count", n)
	}
	return n, nil
}

// StartSessionSweeper runs ExecuteSweepSessions every interval until stopCh closes.
// PRE: interval > 0
// POST: the returned goroutine exits after stopCh is closed
func StartSessionSweeper(deps SweepSessionsDeps, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := ExecuteSweepSessions(ctx, deps); err != nil {
					slog.Error("session_sweep_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("session_sweeper_stopped")
				return
			}
		}
	}()
}

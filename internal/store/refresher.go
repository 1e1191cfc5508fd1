package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RefreshWithTimeout runs Refresh detached from ctx's cancellation, bounded by timeout.
// Used by request handlers so a client disconnect does not abort a shared refresh.
func (s *Store) RefreshWithTimeout(ctx context.Context, timeout time.Duration) RefreshResult {
	refreshCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(refreshCtx, timeout)
		defer cancel()
	}
	return s.Refresh(refreshCtx)
}

// StartAutoRefresh refreshes every interval until ctx is cancelled
func (s *Store) StartAutoRefresh(ctx context.Context, interval, timeout time.Duration) {
	log.Info().Dur("interval", interval).Msg("Starting automatic stock refresh")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Automatic stock refresh stopped")
			return
		case <-ticker.C:
			s.RefreshWithTimeout(ctx, timeout)
		}
	}
}

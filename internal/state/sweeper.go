package state

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultIdleTimeout is how long an untouched state survives
	DefaultIdleTimeout = time.Hour
	// DefaultSweepInterval is how often idle states are evicted
	DefaultSweepInterval = 30 * time.Minute
)

// Sweep removes states whose last interaction is older than maxAge
func (s *Store) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, st := range s.users {
		last := st.Navigation.LastInteraction
		if st.StartedAt.After(last) {
			last = st.StartedAt
		}
		if last.Before(cutoff) {
			delete(s.users, id)
			removed++
		}
	}
	return removed
}

// RunSweeper evicts idle states every interval until ctx is done
func RunSweeper(ctx context.Context, store *Store, interval, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("State sweeper stopped")
			return
		case <-ticker.C:
			if removed := store.Sweep(maxAge); removed > 0 {
				logger.Info("Evicted idle user states", zap.Int("removed", removed))
			}
		}
	}
}

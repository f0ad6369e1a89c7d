package usecase

import (
	"context"
	"log/slog"
	"time"
)

const maxAutoSaveInterval = time.Minute

// StartAutoSave runs a background loop that re-persists the store on every
// tick while a session is signed in, even when no local change is known, so
// a backup lost on the server side heals on the next tick. Failures are
// swallowed; the next tick tries again. The loop stops when ctx is canceled.
func (s *Session) StartAutoSave(ctx context.Context) {
	interval := s.cfg.GetSecond("client.auto_save_interval_seconds")
	if interval <= 0 || interval > maxAutoSaveInterval {
		interval = maxAutoSaveInterval
	}

	s.goroutine.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.mu.RLock()
				signedIn := s.account != ""
				s.mu.RUnlock()
				if !signedIn {
					continue
				}

				if err := s.Persist(ctx); err != nil {
					slog.WarnContext(ctx, "auto save failed, will retry on next tick", "error", err)
				}
			}
		}
	})
}

package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

// SignOut unbinds the session and clears the local snapshot. It refuses to
// run while a backup write is in flight so a half-finished write cannot race
// the teardown.
func (s *Session) SignOut(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "SignOut")
	defer span.End()

	s.mu.Lock()
	if s.writing {
		s.mu.Unlock()
		return goerror.NewBusinessError(entity.ErrBusy, "Cannot sign out while a backup write is in progress", goerror.CodeTooManyRequest)
	}
	s.account = ""
	s.creds = nil
	s.state = entity.SyncStateUnbound
	s.lastBackupAt = time.Time{}
	s.mu.Unlock()

	if err := s.snapshot.Clear(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear local snapshot", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

// Persist writes the current store to the local snapshot and then to the
// remote backup. At most one remote write runs at a time per session; a
// concurrent call fails immediately with a busy error instead of queueing.
//
// An empty store is never written over a non-empty remote backup. When that
// guard check itself fails on the network, the write proceeds.
func (s *Session) Persist(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Persist")
	defer span.End()

	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return goerror.NewBusiness("No account is signed in", goerror.CodeUnauthorized)
	}
	if s.writing {
		s.mu.Unlock()
		return goerror.NewBusinessError(entity.ErrBusy, "A backup write is already in progress", goerror.CodeTooManyRequest)
	}
	s.writing = true
	number := s.account
	creds := make([]entity.Credential, len(s.creds))
	copy(creds, s.creds)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.writing = false
		s.mu.Unlock()
	}()

	if err := s.snapshot.SaveCredentials(ctx, number, creds); err != nil {
		slog.ErrorContext(ctx, "failed to write local snapshot", "error", err)
		return goerror.NewServer(err)
	}

	if len(creds) == 0 {
		remote, exists, err := s.backend.BackupLatest(ctx, number)
		if err == nil && exists && len(remote) > 0 {
			slog.WarnContext(ctx, "store is empty but a remote backup exists, skipping remote write")
			return nil
		}
		if err != nil {
			slog.WarnContext(ctx, "empty-store guard check failed, proceeding with remote write", "error", err)
		}
	}

	if err := s.backend.BackupSave(ctx, number, creds); err != nil {
		s.mu.Lock()
		s.state = entity.SyncStateDirty
		s.mu.Unlock()
		return s.remoteError(ctx, err, "BackupSave")
	}

	s.mu.Lock()
	s.state = entity.SyncStateSynced
	s.lastBackupAt = s.clock.Now()
	s.mu.Unlock()

	return nil
}

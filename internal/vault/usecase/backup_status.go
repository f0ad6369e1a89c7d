package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

// BackupStatus compares the local store against the latest remote backup.
// Network failures degrade to Unknown instead of erroring, since the status
// feeds a passive indicator.
func (s *Session) BackupStatus(ctx context.Context) (entity.BackupStatus, error) {
	ctx, span := s.startSpan(ctx, "BackupStatus")
	defer span.End()

	s.mu.RLock()
	number := s.account
	localSecrets := make(map[string]struct{}, len(s.creds))
	for i := range s.creds {
		localSecrets[s.creds[i].Secret] = struct{}{}
	}
	s.mu.RUnlock()

	if number == "" {
		return entity.BackupStatusUnknown, goerror.NewBusiness("No account is signed in", goerror.CodeUnauthorized)
	}

	remote, exists, err := s.backend.BackupLatest(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch latest backup for status", "error", err)
		return entity.BackupStatusUnknown, nil
	}
	if !exists {
		return entity.BackupStatusNone, nil
	}

	if len(remote) != len(localSecrets) {
		return entity.BackupStatusDiverged, nil
	}
	for i := range remote {
		if _, ok := localSecrets[remote[i].Secret]; !ok {
			return entity.BackupStatusDiverged, nil
		}
	}

	return entity.BackupStatusInSync, nil
}

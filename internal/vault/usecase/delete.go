package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

// Delete removes a credential remote-first: the backup service must confirm
// the delete before the entry leaves the local store. On remote failure the
// local list is untouched.
func (s *Session) Delete(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()

	s.mu.RLock()
	number := s.account
	s.mu.RUnlock()
	if number == "" {
		return goerror.NewBusiness("No account is signed in", goerror.CodeUnauthorized)
	}

	if err := s.backend.CredentialDelete(ctx, number, id); err != nil {
		return s.remoteError(ctx, err, "CredentialDelete")
	}

	s.mu.Lock()
	next := make([]entity.Credential, 0, len(s.creds))
	for i := range s.creds {
		if s.creds[i].ID != id {
			next = append(next, s.creds[i])
		}
	}
	s.creds = next
	s.state = entity.SyncStateSynced
	s.mu.Unlock()

	if err := s.snapshot.SaveCredentials(ctx, number, next); err != nil {
		slog.WarnContext(ctx, "failed to rewrite snapshot after delete", "error", err)
	}

	return nil
}

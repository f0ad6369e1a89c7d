package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

type SignInInput struct {
	AccountNumber string `validate:"required,accountnumber"`
}

// SignIn binds the session to an existing backup account and loads the
// credential store from the local snapshot merged with the latest remote
// backup.
func (s *Session) SignIn(ctx context.Context, in SignInInput) error {
	ctx, span := s.startSpan(ctx, "SignIn")
	defer span.End()

	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.backend.AccountVerify(ctx, in.AccountNumber); err != nil {
		if errors.Is(err, entity.ErrRemoteRejected) {
			slog.WarnContext(ctx, "account number not recognized by backup service")
			return goerror.NewBusinessError(err, "Account number not recognized", goerror.CodeUnauthorized)
		}
		return s.remoteError(ctx, err, "AccountVerify")
	}

	if err := s.snapshot.SaveAccount(ctx, in.AccountNumber); err != nil {
		slog.ErrorContext(ctx, "failed to persist account number locally", "error", err)
		return goerror.NewServer(err)
	}

	s.mu.Lock()
	s.account = in.AccountNumber
	s.creds = nil
	s.state = entity.SyncStateLoading
	s.mu.Unlock()

	return s.load(ctx)
}

// CreateAccount asks the backup service for a fresh account number, signs
// the session in with it, and persists an empty snapshot.
func (s *Session) CreateAccount(ctx context.Context) (string, error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer span.End()

	number, err := s.backend.AccountCreate(ctx)
	if err != nil {
		return "", s.remoteError(ctx, err, "AccountCreate")
	}

	if err := s.snapshot.SaveAccount(ctx, number); err != nil {
		slog.ErrorContext(ctx, "failed to persist account number locally", "error", err)
		return "", goerror.NewServer(err)
	}

	s.mu.Lock()
	s.account = number
	s.creds = nil
	s.state = entity.SyncStateSynced
	s.mu.Unlock()

	if err := s.snapshot.SaveCredentials(ctx, number, nil); err != nil {
		slog.WarnContext(ctx, "failed to write empty snapshot for new account", "error", err)
	}

	return number, nil
}

// Resume restores a previous sign-in from the local snapshot, if any. It
// reports whether an account was found.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "Resume")
	defer span.End()

	number, err := s.snapshot.Account(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read account number from snapshot", "error", err)
		return false, goerror.NewServer(err)
	}
	if number == "" {
		return false, nil
	}

	s.mu.Lock()
	s.account = number
	s.creds = nil
	s.state = entity.SyncStateLoading
	s.mu.Unlock()

	return true, s.load(ctx)
}

// load reads the local snapshot, merges in the latest remote backup when
// reachable, and writes the merged list back. Network failures never block
// the load.
func (s *Session) load(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "load")
	defer span.End()

	s.mu.RLock()
	number := s.account
	s.mu.RUnlock()

	local, err := s.snapshot.Credentials(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "failed to read local snapshot, starting empty", "error", err)
		local = nil
	}

	remote, _, err := s.backend.BackupLatest(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch latest backup, keeping local snapshot", "error", err)
		s.replaceStore(local, entity.SyncStateDirty)
		return nil
	}

	merged := entity.Merge(local, remote)
	if err := s.snapshot.SaveCredentials(ctx, number, merged); err != nil {
		slog.WarnContext(ctx, "failed to write merged snapshot", "error", err)
	}

	s.replaceStore(merged, entity.SyncStateSynced)

	return nil
}

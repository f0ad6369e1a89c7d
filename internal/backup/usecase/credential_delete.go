package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
)

type CredentialDeleteInput struct {
	AccountNumber string `validate:"required,accountnumber"`
	ID            int64  `validate:"required"`
}

// CredentialDelete removes one credential from the account's latest backup
// and writes the shrunk list back as a new backup record.
func (s *Usecase) CredentialDelete(ctx context.Context, in CredentialDeleteInput) error {
	ctx, span := s.startSpan(ctx, "CredentialDelete")
	defer span.End()

	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	account, err := s.resolveAccount(ctx, in.AccountNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "delete for unknown account number")
		return goerror.NewBusiness("Account number not recognized", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "error", err)
		return goerror.NewServer(err)
	}

	rec, err := s.repoDB.GetLatestBackup(ctx, account.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("No backup found for this account", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest backup", "account_id", account.ID, "error", err)
		return goerror.NewServer(err)
	}

	remaining := make([]entity.Credential, 0, len(rec.Credentials))
	for i := range rec.Credentials {
		if rec.Credentials[i].ID != in.ID {
			remaining = append(remaining, rec.Credentials[i])
		}
	}
	if len(remaining) == len(rec.Credentials) {
		return goerror.NewBusiness("Credential not found in backup", goerror.CodeNotFound)
	}

	next := entity.BackupRecord{
		ID:          s.uid.Generate(),
		AccountID:   account.ID,
		Credentials: remaining,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repoDB.ReplaceBackup(ctx, next); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace backup", "account_id", account.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

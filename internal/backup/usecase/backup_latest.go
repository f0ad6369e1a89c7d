package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
)

type BackupLatestInput struct {
	AccountNumber string `validate:"required,accountnumber"`
}

type BackupLatestOutput struct {
	Credentials []entity.Credential
	CreatedAt   time.Time
}

// BackupLatest returns the account's most recent backup.
func (s *Usecase) BackupLatest(ctx context.Context, in BackupLatestInput) (*BackupLatestOutput, error) {
	ctx, span := s.startSpan(ctx, "BackupLatest")
	defer span.End()

	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, err := s.resolveAccount(ctx, in.AccountNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "fetch for unknown account number")
		return nil, goerror.NewBusiness("Account number not recognized", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "error", err)
		return nil, goerror.NewServer(err)
	}

	rec, err := s.repoDB.GetLatestBackup(ctx, account.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("No backup found for this account", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest backup", "account_id", account.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &BackupLatestOutput{
		Credentials: rec.Credentials,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

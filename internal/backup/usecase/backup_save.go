package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpvault/internal/pkg/otp"
)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const defaultSaveLock = 30 * time.Second

type BackupSaveInput struct {
	AccountNumber string `validate:"required,accountnumber"`
	Credentials   []entity.Credential
}

// BackupSave replaces the account's backup with the given credential list.
// Only one save per account runs at a time; a concurrent save is rejected
// rather than queued, mirroring the client's one-in-flight write rule.
func (s *Usecase) BackupSave(ctx context.Context, in BackupSaveInput) error {
	ctx, span := s.startSpan(ctx, "BackupSave")
	defer span.End()

	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	creds, err := validateCredentials(in.Credentials)
	if err != nil {
		return err
	}

	account, err := s.resolveAccount(ctx, in.AccountNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "save for unknown account number")
		return goerror.NewBusiness("Account number not recognized", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "error", err)
		return goerror.NewServer(err)
	}

	lockKey := "backup_save:" + strconv.FormatInt(account.ID, 10)
	lockDur := s.cfg.GetSecond("modules.backup.save_lock_seconds")
	if lockDur <= 0 {
		lockDur = defaultSaveLock
	}

	state, err := s.idemp.Acquire(ctx, lockKey, lockDur)
	if err != nil {
		// A broken guard must not take the whole save path down with it.
		slog.WarnContext(ctx, "save guard unavailable, proceeding without it", "error", err)
	} else {
		if state != idempotency.StateNone {
			slog.WarnContext(ctx, "concurrent save rejected", "account_id", account.ID)
			return goerror.NewBusiness("A save for this account is already in progress", goerror.CodeTooManyRequest)
		}
		defer func() {
			if err := s.idemp.Release(ctx, lockKey); err != nil {
				slog.WarnContext(ctx, "failed to release save guard", "error", err)
			}
		}()
	}

	rec := entity.BackupRecord{
		ID:          s.uid.Generate(),
		AccountID:   account.ID,
		Credentials: creds,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repoDB.ReplaceBackup(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace backup", "account_id", account.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

// validateCredentials checks every entry and returns the list with secrets
// in canonical form.
func validateCredentials(in []entity.Credential) ([]entity.Credential, error) {
	out := make([]entity.Credential, len(in))
	for i, c := range in {
		field := func(name string) string {
			return fmt.Sprintf("credentials[%d].%s", i, name)
		}

		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, goerror.NewInvalidInput(nil, field("name"), "name is required")
		}
		if c.Email != "" && !reEmail.MatchString(c.Email) {
			return nil, goerror.NewInvalidInput(nil, field("email"), "email is not a valid address")
		}

		c.Secret = otp.NormalizeSecret(c.Secret)
		if c.Secret == "" {
			return nil, goerror.NewInvalidInput(nil, field("secret"), "secret has no Base32 content")
		}

		out[i] = c
	}

	return out, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
)

type AccountVerifyInput struct {
	AccountNumber string `validate:"required,accountnumber"`
}

// AccountVerify checks that the account number belongs to an existing
// account.
func (s *Usecase) AccountVerify(ctx context.Context, in AccountVerifyInput) error {
	ctx, span := s.startSpan(ctx, "AccountVerify")
	defer span.End()

	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	_, err := s.resolveAccount(ctx, in.AccountNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "verification for unknown account number")
		return goerror.NewBusiness("Account number not recognized", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
)

// maxNumberAttempts bounds collision retries when allocating an account
// number. With 24 random digits a collision is already vanishingly rare.
const maxNumberAttempts = 5

type AccountCreateOutput struct {
	AccountNumber string
}

// AccountCreate allocates a fresh 24 digit account number. Only the keyed
// hash reaches storage; the plain number is returned to the caller once and
// never again.
func (s *Usecase) AccountCreate(ctx context.Context) (*AccountCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "AccountCreate")
	defer span.End()

	for range maxNumberAttempts {
		number := s.digits.Generate()

		numberHash, err := s.hmac.Hash(number)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash account number", "error", err)
			return nil, goerror.NewServer(err)
		}

		err = s.repoDB.CreateAccount(ctx, entity.Account{
			ID:         s.uid.Generate(),
			NumberHash: string(numberHash),
			CreatedAt:  s.clock.Now(),
		})
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "account number collision, retrying")
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo create account", "error", err)
			return nil, goerror.NewServer(err)
		}

		return &AccountCreateOutput{AccountNumber: number}, nil
	}

	slog.ErrorContext(ctx, "exhausted account number allocation attempts")
	return nil, goerror.NewServer(errors.New("could not allocate a unique account number"))
}

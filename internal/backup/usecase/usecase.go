package usecase

import (
	"context"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/clock"
	"github.com/shandysiswandi/otpvault/internal/pkg/config"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/hash"
	"github.com/shandysiswandi/otpvault/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/pkg/uid"
	"github.com/shandysiswandi/otpvault/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateAccount(ctx context.Context, account entity.Account) error
	GetAccountByNumberHash(ctx context.Context, numberHash string) (*entity.Account, error)
	ReplaceBackup(ctx context.Context, rec entity.BackupRecord) error
	GetLatestBackup(ctx context.Context, accountID int64) (*entity.BackupRecord, error)
}

type Usecase struct {
	repoDB    repoDB
	idemp     idempotency.Idempotency
	validator validator.Validator
	cfg       config.Config
	hmac      hash.Hash
	uid       uid.NumberID
	digits    uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	UID         uid.NumberID
	Digits      uid.StringID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		cfg:       dep.Config,
		hmac:      dep.HMAC,
		uid:       dep.UID,
		digits:    dep.Digits,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("backup.usecase").Start(ctx, name)
}

// resolveAccount maps a plain account number to its stored account via the
// keyed hash. Unknown numbers come back as an authentication failure so the
// response does not leak which numbers exist.
func (s *Usecase) resolveAccount(ctx context.Context, number string) (*entity.Account, error) {
	numberHash, err := s.hmac.Hash(number)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	account, err := s.repoDB.GetAccountByNumberHash(ctx, string(numberHash))
	if err != nil {
		return nil, err
	}

	return account, nil
}

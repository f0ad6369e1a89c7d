package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/otpvault/internal/pkg/clock"
	"github.com/shandysiswandi/otpvault/internal/pkg/config"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/pkg/otp"
	"github.com/shandysiswandi/otpvault/internal/pkg/uid"
	"github.com/shandysiswandi/otpvault/internal/pkg/validator"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoBackend interface {
	AccountCreate(ctx context.Context) (string, error)
	AccountVerify(ctx context.Context, number string) error
	BackupSave(ctx context.Context, number string, creds []entity.Credential) error
	BackupLatest(ctx context.Context, number string) ([]entity.Credential, bool, error)
	CredentialDelete(ctx context.Context, number string, id int64) error
}

type repoSnapshot interface {
	Account(ctx context.Context) (string, error)
	SaveAccount(ctx context.Context, number string) error
	Credentials(ctx context.Context, number string) ([]entity.Credential, error)
	SaveCredentials(ctx context.Context, number string, creds []entity.Credential) error
	Clear(ctx context.Context) error
}

// Session owns one signed-in account: the in-memory credential store, its
// local snapshot, and the synchronization protocol against the backup
// service.
type Session struct {
	backend   repoBackend
	snapshot  repoSnapshot
	engine    *otp.TOTP
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	uuid      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager

	mu           sync.RWMutex
	account      string
	creds        []entity.Credential
	state        entity.SyncState
	writing      bool
	lastBackupAt time.Time
}

// Dependency lists everything a Session needs.
type Dependency struct {
	Backend    repoBackend
	Snapshot   repoSnapshot
	Engine     *otp.TOTP
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Session {
	engine := dep.Engine
	if engine == nil {
		engine = otp.NewTOTP(0, 0)
	}

	return &Session{
		backend:   dep.Backend,
		snapshot:  dep.Snapshot,
		engine:    engine,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
		state:     entity.SyncStateUnbound,
	}
}

func (s *Session) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

// State returns the current synchronization state.
func (s *Session) State() entity.SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AccountNumber returns the signed-in account number, empty when unbound.
func (s *Session) AccountNumber() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Credentials returns a copy of the current store.
func (s *Session) Credentials() []entity.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Credential, len(s.creds))
	copy(out, s.creds)
	return out
}

// LastBackupAt returns when the last remote write succeeded.
func (s *Session) LastBackupAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBackupAt
}

// replaceStore swaps the credential slice atomically so readers always see a
// complete store.
func (s *Session) replaceStore(creds []entity.Credential, state entity.SyncState) {
	s.mu.Lock()
	s.creds = creds
	s.state = state
	s.mu.Unlock()
}

func (s *Session) remoteError(ctx context.Context, err error, op string) error {
	if errors.Is(err, entity.ErrRemoteRejected) {
		slog.WarnContext(ctx, "backup service rejected request", "op", op, "error", err)
		return goerror.NewBusinessError(err, "Backup service rejected the request", goerror.CodeConflict)
	}

	slog.ErrorContext(ctx, "backup service unreachable", "op", op, "error", err)
	return goerror.NewServer(err)
}

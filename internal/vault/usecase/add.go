package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/otp"
	"github.com/shandysiswandi/otpvault/internal/pkg/otpauth"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

type AddInput struct {
	Name     string `validate:"required,min=1,max=100"`
	Email    string `validate:"omitempty,email"`
	Username string `validate:"omitempty,max=100"`
	Secret   string `validate:"required,base32secret"`
}

// Add stores a new credential. The secret must produce one valid code before
// it is accepted. The entry is persisted locally and remotely; if the remote
// write fails, the entry is rolled back out of the store.
func (s *Session) Add(ctx context.Context, in AddInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "Add")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secret := otp.NormalizeSecret(in.Secret)
	if _, err := s.engine.GenerateCode(secret, s.clock.Now()); err != nil {
		slog.WarnContext(ctx, "rejected secret that cannot produce a code")
		return nil, goerror.NewInvalidInput(nil, "secret", "secret is not a usable Base32 key")
	}

	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return nil, goerror.NewBusiness("No account is signed in", goerror.CodeUnauthorized)
	}
	if entity.IsDuplicate(s.creds, secret) {
		s.mu.Unlock()
		return nil, goerror.NewBusinessError(entity.ErrDuplicateSecret, "This secret is already stored", goerror.CodeConflict)
	}

	cred := entity.Credential{
		ID:       s.uid.Generate(),
		Name:     in.Name,
		Email:    in.Email,
		Username: in.Username,
		Secret:   secret,
	}
	next := make([]entity.Credential, 0, len(s.creds)+1)
	next = append(next, s.creds...)
	next = append(next, cred)
	s.creds = next
	s.state = entity.SyncStateDirty
	s.mu.Unlock()

	if err := s.Persist(ctx); err != nil {
		s.rollback(ctx, cred.ID)
		return nil, err
	}

	return &cred, nil
}

// AddFromURI parses a single-account provisioning URI and stores it.
func (s *Session) AddFromURI(ctx context.Context, uri string) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "AddFromURI")
	defer span.End()

	p, err := otpauth.Parse(strings.TrimSpace(uri))
	if errors.Is(err, otpauth.ErrMissingSecret) {
		return nil, goerror.NewInvalidInput(nil, "secret", "provisioning uri has no secret")
	}
	if err != nil {
		return nil, goerror.NewInvalidFormat("Not a valid otpauth:// provisioning uri")
	}

	name := p.Issuer
	if name == "" {
		name = p.Email
	}
	if name == "" {
		name = p.Username
	}

	return s.Add(ctx, AddInput{
		Name:     name,
		Email:    p.Email,
		Username: p.Username,
		Secret:   p.Secret,
	})
}

// rollback removes a credential that failed to persist and rewrites the
// snapshot so local state matches the store again.
func (s *Session) rollback(ctx context.Context, id int64) {
	s.mu.Lock()
	next := make([]entity.Credential, 0, len(s.creds))
	for i := range s.creds {
		if s.creds[i].ID != id {
			next = append(next, s.creds[i])
		}
	}
	s.creds = next
	number := s.account
	s.mu.Unlock()

	if err := s.snapshot.SaveCredentials(ctx, number, next); err != nil {
		slog.WarnContext(ctx, "failed to rewrite snapshot after rollback", "error", err)
	}
}

package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

type EditInput struct {
	ID       int64  `validate:"required"`
	Name     string `validate:"required,min=1,max=100"`
	Email    string `validate:"omitempty,email"`
	Username string `validate:"omitempty,max=100"`
}

// Edit updates a credential's display metadata. The secret itself is
// immutable; replacing it means deleting the entry and adding a new one.
func (s *Session) Edit(ctx context.Context, in EditInput) error {
	ctx, span := s.startSpan(ctx, "Edit")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return goerror.NewBusiness("No account is signed in", goerror.CodeUnauthorized)
	}

	idx := -1
	for i := range s.creds {
		if s.creds[i].ID == in.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	}

	next := make([]entity.Credential, len(s.creds))
	copy(next, s.creds)
	next[idx].Name = in.Name
	next[idx].Email = in.Email
	next[idx].Username = in.Username
	s.creds = next
	s.state = entity.SyncStateDirty
	s.mu.Unlock()

	return s.Persist(ctx)
}

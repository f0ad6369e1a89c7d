package usecase

import (
	"time"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
)

// CodeEntry is one row of the live code display.
type CodeEntry struct {
	ID       int64
	Name     string
	Email    string
	Username string
	Code     string
}

// Codes computes the current code for every stored credential. Entries whose
// secret cannot produce a code carry an empty Code instead of failing the
// whole listing.
func (s *Session) Codes(at time.Time) []CodeEntry {
	creds := s.Credentials()

	out := make([]CodeEntry, 0, len(creds))
	for _, c := range creds {
		code, err := s.engine.GenerateCode(c.Secret, at)
		if err != nil {
			code = ""
		}
		out = append(out, CodeEntry{
			ID:       c.ID,
			Name:     c.Name,
			Email:    c.Email,
			Username: c.Username,
			Code:     code,
		})
	}

	return out
}

// CurrentCode computes the code for a single credential.
func (s *Session) CurrentCode(id int64, at time.Time) (string, error) {
	s.mu.RLock()
	secret := ""
	found := false
	for i := range s.creds {
		if s.creds[i].ID == id {
			secret = s.creds[i].Secret
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		return "", goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	}

	code, err := s.engine.GenerateCode(secret, at)
	if err != nil {
		return "", goerror.NewBusinessError(err, "Stored secret cannot produce a code", goerror.CodeInvalidInput)
	}

	return code, nil
}

// SecondsRemaining reports how long the codes shown at the given instant
// stay valid.
func (s *Session) SecondsRemaining(at time.Time) int {
	return s.engine.SecondsRemaining(at)
}

package entity

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/otpvault/internal/pkg/otp"
)

// Credential is one stored TOTP account. The secret is always held in
// normalized form (uppercase RFC 4648 alphabet, separators stripped).
type Credential struct {
	ID       int64  `json:"id,string"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
}

// Account returns the label half of the credential, preferring the email.
func (c Credential) Account() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Username
}

// Normalize returns a copy with the secret in canonical form.
func (c Credential) Normalize() Credential {
	c.Secret = otp.NormalizeSecret(c.Secret)
	return c
}

// Merge combines two credential lists keeping the first occurrence of each
// secret. Entries from primary always win over secondary.
func Merge(primary, secondary []Credential) []Credential {
	combined := make([]Credential, 0, len(primary)+len(secondary))
	combined = append(combined, primary...)
	combined = append(combined, secondary...)

	return lo.UniqBy(combined, func(c Credential) string {
		return c.Secret
	})
}

// IsDuplicate reports whether the normalized secret already exists in list.
func IsDuplicate(list []Credential, secret string) bool {
	secret = otp.NormalizeSecret(secret)
	for i := range list {
		if list[i].Secret == secret {
			return true
		}
	}
	return false
}

package otp

import (
	"time"
)

// TOTP generates time-based one-time passwords for Base32-encoded secrets.
type TOTP struct {
	period int64
	digits int
}

// NewTOTP constructs a TOTP engine with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is not
// positive, it uses the common 30-second period.
func NewTOTP(period int64, digits int) *TOTP {
	if digits != 6 && digits != 8 {
		digits = 6
	}

	if period <= 0 {
		period = 30
	}

	return &TOTP{period: period, digits: digits}
}

// GenerateCode creates a code for the given secret at the given time.
//
// The secret is normalized and leniently decoded before keying; a secret
// with no decodable content yields ErrInvalidSecret rather than a code.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	key := DecodeBase32(NormalizeSecret(secret))
	if len(key) == 0 {
		return "", ErrInvalidSecret
	}

	counter := uint64(at.Unix() / o.period)

	return HOTP(key, counter, o.digits)
}

// Validate reports whether code is the valid code for secret at the given
// time. Comparison is exact; no step skew is allowed.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	want, err := o.GenerateCode(secret, at)

	return err == nil && want == code
}

// SecondsRemaining returns how many whole seconds remain in the current
// time step, in the range [0, period). A display polling once per second
// can feed this straight into a countdown indicator.
func (o *TOTP) SecondsRemaining(at time.Time) int {
	return int(o.period - 1 - (at.Unix() % o.period))
}

// Period returns the step length in seconds.
func (o *TOTP) Period() int64 {
	return o.period
}

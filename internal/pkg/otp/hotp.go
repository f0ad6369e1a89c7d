package otp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 4226 mandates HMAC-SHA1
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidSecret indicates key material that decodes to nothing usable.
var ErrInvalidSecret = errors.New("otp: invalid secret")

// HOTP computes an RFC 4226 HMAC-based one-time password from raw key bytes
// and a counter value, rendered as a zero-padded decimal string.
func HOTP(key []byte, counter uint64, digits int) (string, error) {
	if len(key) == 0 {
		return "", ErrInvalidSecret
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 4-byte
	// window, whose top bit is masked to keep the value in 31 bits.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for range digits {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, value%mod), nil
}

package otp

import "strings"

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// NormalizeSecret strips every character outside the RFC 4648 Base32
// alphabet and upper-cases the remainder. It is applied to every secret
// entering the system, whatever the entry path, so that deduplication by
// secret compares canonical forms only.
func NormalizeSecret(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z', r >= '2' && r <= '7':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		}
	}

	return b.String()
}

// DecodeBase32 decodes Base32 text into bytes, skipping characters outside
// the alphabet and discarding a trailing partial byte. It never fails:
// empty or fully-invalid input decodes to an empty slice.
func DecodeBase32(text string) []byte {
	out := make([]byte, 0, len(text)*5/8)

	var buf uint16
	var bits uint

	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}

		var val uint16
		switch {
		case r >= 'A' && r <= 'Z':
			val = uint16(r - 'A')
		case r >= '2' && r <= '7':
			val = uint16(r-'2') + 26
		default:
			continue
		}

		buf = buf<<5 | val
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}

	return out
}

// EncodeBase32 is the round-trip inverse of DecodeBase32 for valid inputs:
// unpadded RFC 4648 Base32, upper-case alphabet.
func EncodeBase32(data []byte) string {
	var b strings.Builder
	b.Grow((len(data)*8 + 4) / 5)

	var buf uint16
	var bits uint

	for _, by := range data {
		buf = buf<<8 | uint16(by)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(base32Alphabet[buf>>bits&0x1f])
		}
	}
	if bits > 0 {
		b.WriteByte(base32Alphabet[buf<<(5-bits)&0x1f])
	}

	return b.String()
}

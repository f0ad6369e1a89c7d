// Package otp implements the time-based one-time password algorithm
// (RFC 6238) over Base32-encoded shared secrets.
//
// The Base32 codec here is deliberately lenient: characters outside the
// RFC 4648 alphabet are skipped rather than rejected, and unpadded input
// with a trailing partial group is accepted. Authenticator secrets in the
// wild arrive with spaces, dashes and lowercase letters, and the engine
// must accept whatever a QR code or a paste buffer delivers.
package otp

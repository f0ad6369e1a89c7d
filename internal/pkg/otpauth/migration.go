package otpauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const migrationPrefix = "otpauth-migration://offline?data="

// MigrationEntry is one account in a batch migration container, using the
// field layout expected by the Google Authenticator import flow.
type MigrationEntry struct {
	Secret    string `json:"secret"`
	Name      string `json:"name"`
	Issuer    string `json:"issuer"`
	Type      string `json:"type"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Counter   int    `json:"counter"`
}

// Migration is the batch container serialized into a migration URI.
type Migration struct {
	Version       int              `json:"version"`
	BatchSize     int              `json:"batchSize"`
	BatchIndex    int              `json:"batchIndex"`
	BatchID       string           `json:"batchId"`
	OTPParameters []MigrationEntry `json:"otpParameters"`
}

// NewMigrationEntry builds a TOTP migration entry. The name is
// "issuer:account" when an account label exists, else just the issuer.
func NewMigrationEntry(issuer, account, secret string) MigrationEntry {
	name := issuer
	if account != "" {
		name = issuer + ":" + account
	}

	return MigrationEntry{
		Secret:    secret,
		Name:      name,
		Issuer:    issuer,
		Type:      "TOTP",
		Algorithm: "SHA1",
		Digits:    6,
		Counter:   0,
	}
}

// BuildMigration serializes entries into an otpauth-migration://offline URI
// carrying a base64-encoded JSON batch, returned as a byte payload for
// hand-off to whatever file-save or share mechanism the caller owns.
func BuildMigration(batchID string, entries []MigrationEntry) ([]byte, error) {
	m := Migration{
		Version:       1,
		BatchSize:     len(entries),
		BatchIndex:    0,
		BatchID:       batchID,
		OTPParameters: entries,
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("otpauth: marshal migration batch: %w", err)
	}

	return []byte(migrationPrefix + base64.StdEncoding.EncodeToString(raw)), nil
}

// ParseMigration decodes a migration blob produced by BuildMigration. It is
// the round-trip counterpart used to re-import an exported batch.
func ParseMigration(blob []byte) (*Migration, error) {
	s := string(blob)
	if !strings.HasPrefix(s, "otpauth-migration://offline?") {
		return nil, ErrMalformedURI
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, ErrMalformedURI
	}

	data := u.Query().Get("data")
	if data == "" {
		return nil, ErrMalformedURI
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("otpauth: decode migration data: %w", err)
	}

	var m Migration
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("otpauth: unmarshal migration batch: %w", err)
	}

	return &m, nil
}

// Package otpauth parses and renders otpauth:// provisioning URIs and the
// batch migration format used for bulk export to other authenticator apps.
package otpauth

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

const totpPrefix = "otpauth://totp/"

var (
	// ErrMalformedURI indicates input that is not a TOTP provisioning URI.
	ErrMalformedURI = errors.New("otpauth: malformed provisioning uri")
	// ErrMissingSecret indicates a provisioning URI without a secret parameter.
	ErrMissingSecret = errors.New("otpauth: missing secret parameter")
)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Payload is one account's worth of provisioning data, parsed from a URI or
// assembled for export. It is transient and never persisted as-is.
type Payload struct {
	// Issuer is the service name from the label's issuer part.
	Issuer string
	// Email holds the account part when it looks like an email address.
	Email string
	// Username holds the account part otherwise. Exactly one of Email and
	// Username is set per parsed payload.
	Username string
	// Secret is the raw secret token exactly as it appeared in the URI,
	// before any normalization.
	Secret string
}

// Parse extracts the provisioning payload from a single-account
// otpauth://totp/ URI.
//
// The secret is taken verbatim from the query string, without percent
// decoding, so the exact Base32 token survives the trip through the URI.
func Parse(uri string) (*Payload, error) {
	if !strings.HasPrefix(uri, totpPrefix) {
		return nil, ErrMalformedURI
	}

	rest := uri[len(totpPrefix):]
	label := rest
	query := ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		label = rest[:i]
		query = rest[i+1:]
	}

	issuerRaw, accountRaw, found := strings.Cut(label, ":")
	if !found {
		issuerRaw, accountRaw = "", label
	}

	issuer, err := url.PathUnescape(issuerRaw)
	if err != nil {
		return nil, ErrMalformedURI
	}
	account, err := url.PathUnescape(accountRaw)
	if err != nil {
		return nil, ErrMalformedURI
	}

	secret, ok := rawQueryValue(query, "secret")
	if !ok || secret == "" {
		return nil, ErrMissingSecret
	}

	p := &Payload{Issuer: issuer, Secret: secret}
	if reEmail.MatchString(account) {
		p.Email = account
	} else {
		p.Username = account
	}

	return p, nil
}

// rawQueryValue returns the undecoded value of the first occurrence of key
// in a raw query string.
func rawQueryValue(query, key string) (string, bool) {
	for _, pair := range strings.Split(query, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k == key {
			return v, true
		}
	}

	return "", false
}

// Build renders a single-account provisioning URI suitable for display as a
// scannable QR code. Every component is percent-encoded except the secret,
// which is already restricted to the Base32 alphabet.
func Build(issuer, account, secret string) string {
	var b strings.Builder
	b.WriteString(totpPrefix)
	b.WriteString(url.PathEscape(issuer))
	if account != "" {
		b.WriteByte(':')
		b.WriteString(url.PathEscape(account))
	}
	b.WriteString("?secret=")
	b.WriteString(secret)
	b.WriteString("&issuer=")
	b.WriteString(url.QueryEscape(issuer))

	return b.String()
}

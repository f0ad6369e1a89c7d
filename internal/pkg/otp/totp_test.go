package otp

import (
	"bytes"
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Base32 of the RFC 6238 reference key "12345678901234567890".
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateCodeRFC6238Vectors(t *testing.T) {
	vectors := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	engine := NewTOTP(30, 6)

	for _, v := range vectors {
		got, err := engine.GenerateCode(rfcSecret, time.Unix(v.unix, 0))
		if err != nil {
			t.Fatalf("GenerateCode(%d): unexpected error: %v", v.unix, err)
		}
		if got != v.want {
			t.Fatalf("GenerateCode(%d) = %q, want %q", v.unix, got, v.want)
		}
	}
}

func TestGenerateCodeStableWithinStep(t *testing.T) {
	engine := NewTOTP(30, 6)

	first, err := engine.GenerateCode(rfcSecret, time.Unix(60, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	same, err := engine.GenerateCode(rfcSecret, time.Unix(89, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, err := engine.GenerateCode(rfcSecret, time.Unix(90, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != same {
		t.Fatalf("code changed inside a step: %q vs %q", first, same)
	}
	if first == next {
		t.Fatalf("code did not change at the step boundary")
	}
}

func TestGenerateCodeMatchesReferenceImplementation(t *testing.T) {
	secrets := []string{
		"JBSWY3DPEHPK3PXP",
		rfcSecret,
	}
	times := []int64{59, 1111111109, 1700000000, 1700000015, 1700000030}

	engine := NewTOTP(30, 6)

	for _, secret := range secrets {
		for _, unix := range times {
			at := time.Unix(unix, 0)

			got, err := engine.GenerateCode(secret, at)
			if err != nil {
				t.Fatalf("GenerateCode(%s, %d): %v", secret, unix, err)
			}

			want, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
				Period:    30,
				Digits:    libotp.DigitsSix,
				Algorithm: libotp.AlgorithmSHA1,
			})
			if err != nil {
				t.Fatalf("reference GenerateCodeCustom(%s, %d): %v", secret, unix, err)
			}

			if got != want {
				t.Fatalf("engine disagrees with reference for %s at %d: %q vs %q", secret, unix, got, want)
			}
		}
	}
}

func TestGenerateCodeInvalidSecret(t *testing.T) {
	engine := NewTOTP(30, 6)

	for _, secret := range []string{"", "0189", "!!??"} {
		if _, err := engine.GenerateCode(secret, time.Unix(59, 0)); err != ErrInvalidSecret {
			t.Fatalf("GenerateCode(%q): got %v, want ErrInvalidSecret", secret, err)
		}
	}
}

func TestValidate(t *testing.T) {
	engine := NewTOTP(30, 6)
	at := time.Unix(59, 0)

	if !engine.Validate("287082", rfcSecret, at) {
		t.Fatalf("expected valid code to pass")
	}
	if engine.Validate("287083", rfcSecret, at) {
		t.Fatalf("expected wrong code to fail")
	}
	if engine.Validate("287082", "", at) {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestSecondsRemaining(t *testing.T) {
	engine := NewTOTP(30, 6)

	if got := engine.SecondsRemaining(time.Unix(0, 0)); got != 29 {
		t.Fatalf("SecondsRemaining(0) = %d, want 29", got)
	}
	if got := engine.SecondsRemaining(time.Unix(29, 0)); got != 0 {
		t.Fatalf("SecondsRemaining(29) = %d, want 0", got)
	}
	if got := engine.SecondsRemaining(time.Unix(30, 0)); got != 29 {
		t.Fatalf("SecondsRemaining(30) = %d, want 29", got)
	}
}

func TestNormalizeSecret(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"jbswy3dp", "JBSWY3DP"},
		{"JBSW Y3DP", "JBSWY3DP"},
		{"jbsw-y3dp-ehpk-3pxp", "JBSWY3DPEHPK3PXP"},
		{"0189!", ""},
	}

	for _, c := range cases {
		if got := NormalizeSecret(c.in); got != c.want {
			t.Fatalf("NormalizeSecret(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeBase32Length(t *testing.T) {
	// Every prefix of a valid secret decodes to floor(5*n/8) bytes.
	secret := "JBSWY3DPEHPK3PXP"
	for n := range len(secret) + 1 {
		got := DecodeBase32(secret[:n])
		if want := 5 * n / 8; len(got) != want {
			t.Fatalf("DecodeBase32(%q): %d bytes, want %d", secret[:n], len(got), want)
		}
	}
}

func TestDecodeBase32SkipsInvalidCharacters(t *testing.T) {
	clean := DecodeBase32("JBSWY3DP")
	noisy := DecodeBase32("jbsw y3dp!!")

	if !bytes.Equal(clean, noisy) {
		t.Fatalf("noisy input decoded differently: %x vs %x", clean, noisy)
	}
	if len(DecodeBase32("")) != 0 || len(DecodeBase32("189?!")) != 0 {
		t.Fatalf("expected empty decode for invalid input")
	}
}

func TestEncodeBase32RoundTrip(t *testing.T) {
	inputs := []string{"JBSWY3DP", "JBSWY3DPEHPK3PXP", rfcSecret, "GE"}

	for _, in := range inputs {
		if got := EncodeBase32(DecodeBase32(in)); got != in {
			t.Fatalf("round trip of %q produced %q", in, got)
		}
	}
}

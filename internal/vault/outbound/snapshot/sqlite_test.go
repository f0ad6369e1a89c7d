package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestAccountRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	number, err := s.Account(ctx)
	if err != nil || number != "" {
		t.Fatalf("fresh store: got %q/%v, want empty", number, err)
	}

	if err := s.SaveAccount(ctx, "123456789012345678901234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SaveAccount(ctx, "999999999999999999999999"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	number, err = s.Account(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "999999999999999999999999" {
		t.Fatalf("number = %q, want latest value", number)
	}
}

func TestCredentialsRoundTripAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	account := "123456789012345678901234"

	creds := []entity.Credential{
		{ID: 3, Name: "GitHub", Email: "alice@example.com", Secret: "JBSWY3DP"},
		{ID: 1, Name: "Router", Username: "admin", Secret: "GEZDGNBV"},
	}
	if err := s.SaveCredentials(ctx, account, creds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Credentials(ctx, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("length = %d, want 2", len(got))
	}
	if got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("insertion order lost: %+v", got)
	}
	if got[0].Email != "alice@example.com" || got[1].Username != "admin" {
		t.Fatalf("fields lost: %+v", got)
	}
}

func TestSaveCredentialsReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	account := "123456789012345678901234"

	first := []entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}}
	if err := s.SaveCredentials(ctx, account, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := []entity.Credential{{ID: 2, Name: "Mail", Secret: "GEZDGNBV"}}
	if err := s.SaveCredentials(ctx, account, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Credentials(ctx, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("old snapshot survived the swap: %+v", got)
	}
}

func TestCredentialsScopedToAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveCredentials(ctx, "111111111111111111111111",
		[]entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Credentials(ctx, "222222222222222222222222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("credentials leaked across accounts: %+v", got)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	account := "123456789012345678901234"

	if err := s.SaveAccount(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SaveCredentials(ctx, account,
		[]entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	number, err := s.Account(ctx)
	if err != nil || number != "" {
		t.Fatalf("account survived clear: %q/%v", number, err)
	}
	creds, err := s.Credentials(ctx, account)
	if err != nil || len(creds) != 0 {
		t.Fatalf("credentials survived clear: %+v/%v", creds, err)
	}
}

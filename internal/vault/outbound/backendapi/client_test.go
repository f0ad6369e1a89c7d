package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:     srv.URL,
		Timeout:     2 * time.Second,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}, instrument.NewNoop())

	return c, srv
}

func TestAccountCreate(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/backup/accounts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"data":    map[string]string{"account_number": "123456789012345678901234"},
		})
	}))

	number, err := c.AccountCreate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != "123456789012345678901234" {
		t.Fatalf("number = %q", number)
	}
}

func TestAccountVerifyRejected(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Account number not recognized"})
	}))

	err := c.AccountVerify(context.Background(), "000000000000000000000000")
	if !errors.Is(err, entity.ErrRemoteRejected) {
		t.Fatalf("got %v, want ErrRemoteRejected", err)
	}
}

func TestBackupSaveSendsCredentials(t *testing.T) {
	var got struct {
		AccountNumber string              `json:"account_number"`
		Credentials   []entity.Credential `json:"credentials"`
	}

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/backup/backups" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))

	creds := []entity.Credential{{ID: 42, Name: "GitHub", Secret: "JBSWY3DP"}}
	if err := c.BackupSave(context.Background(), "123456789012345678901234", creds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.AccountNumber != "123456789012345678901234" {
		t.Fatalf("account number = %q", got.AccountNumber)
	}
	if len(got.Credentials) != 1 || got.Credentials[0].ID != 42 {
		t.Fatalf("credentials payload: %+v", got.Credentials)
	}
}

func TestBackupLatestNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "No backup found"})
	}))

	creds, exists, err := c.BackupLatest(context.Background(), "123456789012345678901234")
	if err != nil {
		t.Fatalf("missing backup should not be an error: %v", err)
	}
	if exists || creds != nil {
		t.Fatalf("got exists=%v creds=%v, want absent", exists, creds)
	}
}

func TestBackupLatestReturnsCredentials(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"data": map[string]any{
				"credentials": []entity.Credential{{ID: 7, Name: "Mail", Secret: "GEZDGNBV"}},
			},
		})
	}))

	creds, exists, err := c.BackupLatest(context.Background(), "123456789012345678901234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists || len(creds) != 1 || creds[0].ID != 7 {
		t.Fatalf("got exists=%v creds=%+v", exists, creds)
	}
}

func TestServerErrorRetriesThenUnavailable(t *testing.T) {
	var calls atomic.Int32

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := c.AccountVerify(context.Background(), "123456789012345678901234")
	if !errors.Is(err, entity.ErrRemoteUnavailable) {
		t.Fatalf("got %v, want ErrRemoteUnavailable", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("attempts = %d, want initial try plus 2 retries", calls.Load())
	}
}

func TestRejectionDoesNotRetry(t *testing.T) {
	var calls atomic.Int32

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "save already in progress"})
	}))

	err := c.BackupSave(context.Background(), "123456789012345678901234", nil)
	if !errors.Is(err, entity.ErrRemoteRejected) {
		t.Fatalf("got %v, want ErrRemoteRejected", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("attempts = %d, rejections must not retry", calls.Load())
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := c.AccountVerify(context.Background(), "123456789012345678901234")
	if !errors.Is(err, entity.ErrRemoteUnavailable) {
		t.Fatalf("got %v, want ErrRemoteUnavailable", err)
	}
}

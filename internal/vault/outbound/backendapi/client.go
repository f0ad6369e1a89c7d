// Package backendapi is the HTTP client for the backup service. Transport
// failures and explicit rejections surface as distinct errors so the
// synchronization protocol can treat them differently.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBytes = 1 << 20

// errNotFound marks a 404 so callers that expect absence (latest-backup
// lookups) can treat it as a normal outcome.
var errNotFound = errors.New("backendapi: resource not found")

// Config holds the knobs for a Client.
type Config struct {
	// BaseURL is the backup service root, without a trailing slash.
	BaseURL string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// MaxRetries bounds retries on transport errors. Rejections never retry.
	MaxRetries uint64
	// BackoffBase seeds the fibonacci backoff between attempts.
	BackoffBase time.Duration
}

type Client struct {
	baseURL     string
	hc          *http.Client
	ins         instrument.Instrumentation
	timeout     time.Duration
	maxRetries  uint64
	backoffBase time.Duration
}

func NewClient(cfg Config, ins instrument.Instrumentation) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = 200 * time.Millisecond
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		hc:          &http.Client{},
		ins:         ins,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		backoffBase: backoffBase,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("vault.outbound.backendapi").Start(ctx, name)
}

// AccountCreate asks the service for a fresh account number.
func (c *Client) AccountCreate(ctx context.Context) (string, error) {
	ctx, span := c.startSpan(ctx, "AccountCreate")
	defer span.End()

	var out struct {
		AccountNumber string `json:"account_number"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/backup/accounts", nil, &out); err != nil {
		return "", c.asRejected(err)
	}

	return out.AccountNumber, nil
}

// AccountVerify checks that the account number exists on the service.
func (c *Client) AccountVerify(ctx context.Context, number string) error {
	ctx, span := c.startSpan(ctx, "AccountVerify")
	defer span.End()

	in := map[string]string{"account_number": number}
	return c.asRejected(c.call(ctx, http.MethodPost, "/api/v1/backup/accounts/verify", in, nil))
}

// BackupSave replaces the account's remote backup with the given list.
func (c *Client) BackupSave(ctx context.Context, number string, creds []entity.Credential) error {
	ctx, span := c.startSpan(ctx, "BackupSave")
	defer span.End()

	in := struct {
		AccountNumber string              `json:"account_number"`
		Credentials   []entity.Credential `json:"credentials"`
	}{AccountNumber: number, Credentials: creds}

	return c.asRejected(c.call(ctx, http.MethodPut, "/api/v1/backup/backups", in, nil))
}

// BackupLatest fetches the most recent backup. A missing backup is a normal
// outcome reported through the boolean, not an error.
func (c *Client) BackupLatest(ctx context.Context, number string) ([]entity.Credential, bool, error) {
	ctx, span := c.startSpan(ctx, "BackupLatest")
	defer span.End()

	in := map[string]string{"account_number": number}
	var out struct {
		Credentials []entity.Credential `json:"credentials"`
	}

	err := c.call(ctx, http.MethodPost, "/api/v1/backup/backups/latest", in, &out)
	if errors.Is(err, errNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.asRejected(err)
	}

	return out.Credentials, true, nil
}

// CredentialDelete removes one credential from the account's backup.
func (c *Client) CredentialDelete(ctx context.Context, number string, id int64) error {
	ctx, span := c.startSpan(ctx, "CredentialDelete")
	defer span.End()

	in := struct {
		AccountNumber string `json:"account_number"`
		ID            int64  `json:"id,string"`
	}{AccountNumber: number, ID: id}

	return c.asRejected(c.call(ctx, http.MethodPost, "/api/v1/backup/credentials/delete", in, nil))
}

// asRejected folds the internal not-found marker into the rejection error
// for callers that do not treat absence specially.
func (c *Client) asRejected(err error) error {
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: not found", entity.ErrRemoteRejected)
	}
	return err
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backendapi: marshal request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.backoffBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.attempt(ctx, method, path, payload, out)
	})
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backendapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("%w: %v", entity.ErrRemoteUnavailable, err))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return retry.RetryableError(fmt.Errorf("%w: read response: %v", entity.ErrRemoteUnavailable, err))
	}

	switch {
	case res.StatusCode >= http.StatusInternalServerError:
		return retry.RetryableError(fmt.Errorf("%w: status %d", entity.ErrRemoteUnavailable, res.StatusCode))

	case res.StatusCode == http.StatusNotFound:
		return errNotFound

	case res.StatusCode >= http.StatusBadRequest:
		var fail struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &fail)
		if fail.Message == "" {
			fail.Message = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("%w: %s", entity.ErrRemoteRejected, fail.Message)
	}

	if out == nil {
		return nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: malformed response: %v", entity.ErrRemoteUnavailable, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: malformed response data: %v", entity.ErrRemoteUnavailable, err)
	}

	return nil
}

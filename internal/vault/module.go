// Package vault is the client core: the credential store, TOTP display, and
// the synchronization protocol against the backup service. It is meant to be
// embedded by whatever front end hosts the vault.
package vault

import (
	"github.com/shandysiswandi/otpvault/internal/pkg/clock"
	"github.com/shandysiswandi/otpvault/internal/pkg/config"
	"github.com/shandysiswandi/otpvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/pkg/otp"
	"github.com/shandysiswandi/otpvault/internal/pkg/uid"
	"github.com/shandysiswandi/otpvault/internal/pkg/validator"
	"github.com/shandysiswandi/otpvault/internal/vault/outbound/backendapi"
	"github.com/shandysiswandi/otpvault/internal/vault/outbound/snapshot"
	"github.com/shandysiswandi/otpvault/internal/vault/usecase"
)

type Dependency struct {
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the session with its HTTP backend client and SQLite snapshot
// store. The returned closer releases the snapshot database.
func New(dep Dependency) (*usecase.Session, func() error, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, nil, err
	}

	store, err := snapshot.Open(dep.Config.GetString("client.snapshot_path"))
	if err != nil {
		return nil, nil, err
	}

	backend := backendapi.NewClient(backendapi.Config{
		BaseURL:     dep.Config.GetString("client.backend_base_url"),
		Timeout:     dep.Config.GetSecond("client.backend_timeout_seconds"),
		MaxRetries:  uint64(dep.Config.GetUint("client.backend_max_retries")),
		BackoffBase: dep.Config.GetSecond("client.backend_backoff_base_seconds"),
	}, dep.Instrument)

	session := usecase.New(usecase.Dependency{
		Backend:    backend,
		Snapshot:   store,
		Engine:     otp.NewTOTP(0, 0),
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.UID,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	})

	return session, store.Close, nil
}

package inbound

import (
	"context"

	"github.com/shandysiswandi/otpvault/internal/backup/usecase"
	"github.com/shandysiswandi/otpvault/internal/pkg/router"
)

type uc interface {
	AccountCreate(ctx context.Context) (*usecase.AccountCreateOutput, error)
	AccountVerify(ctx context.Context, in usecase.AccountVerifyInput) error
	BackupSave(ctx context.Context, in usecase.BackupSaveInput) error
	BackupLatest(ctx context.Context, in usecase.BackupLatestInput) (*usecase.BackupLatestOutput, error)
	CredentialDelete(ctx context.Context, in usecase.CredentialDeleteInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Accounts
	r.POST("/api/v1/backup/accounts", end.AccountCreate)
	r.POST("/api/v1/backup/accounts/verify", end.AccountVerify)

	// Backups. Fetch uses POST because the account number travels in the
	// request body, never in the URL.
	r.PUT("/api/v1/backup/backups", end.BackupSave)
	r.POST("/api/v1/backup/backups/latest", end.BackupLatest)

	// Credentials
	r.POST("/api/v1/backup/credentials/delete", end.CredentialDelete)
}

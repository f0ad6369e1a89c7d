package inbound

import (
	"github.com/shandysiswandi/otpvault/internal/backup/usecase"
	"github.com/shandysiswandi/otpvault/internal/pkg/router"
)

// HTTPEndpoint exposes the backup service operations over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// AccountCreate allocates a new account number.
func (h *HTTPEndpoint) AccountCreate(r *router.Request) (any, error) {
	resp, err := h.uc.AccountCreate(r.Context())
	if err != nil {
		return nil, err
	}

	return AccountCreateResponse{AccountNumber: resp.AccountNumber}, nil
}

// AccountVerify checks an account number.
func (h *HTTPEndpoint) AccountVerify(r *router.Request) (any, error) {
	var req AccountVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.AccountVerify(r.Context(), usecase.AccountVerifyInput{
		AccountNumber: req.AccountNumber,
	}); err != nil {
		return nil, err
	}

	return AccountVerifyResponse{}, nil
}

// BackupSave replaces the account's backup.
func (h *HTTPEndpoint) BackupSave(r *router.Request) (any, error) {
	var req BackupSaveRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.BackupSave(r.Context(), usecase.BackupSaveInput{
		AccountNumber: req.AccountNumber,
		Credentials:   toEntityCredentials(req.Credentials),
	}); err != nil {
		return nil, err
	}

	return BackupSaveResponse{}, nil
}

// BackupLatest returns the most recent backup.
func (h *HTTPEndpoint) BackupLatest(r *router.Request) (any, error) {
	var req BackupLatestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BackupLatest(r.Context(), usecase.BackupLatestInput{
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		return nil, err
	}

	return BackupLatestResponse{
		Credentials: fromEntityCredentials(resp.Credentials),
		CreatedAt:   resp.CreatedAt,
	}, nil
}

// CredentialDelete removes one credential from the latest backup.
func (h *HTTPEndpoint) CredentialDelete(r *router.Request) (any, error) {
	var req CredentialDeleteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.CredentialDelete(r.Context(), usecase.CredentialDeleteInput{
		AccountNumber: req.AccountNumber,
		ID:            req.ID,
	}); err != nil {
		return nil, err
	}

	return CredentialDeleteResponse{}, nil
}

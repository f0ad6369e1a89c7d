package inbound

import (
	"time"

	"github.com/shandysiswandi/otpvault/internal/backup/entity"
)

type CredentialPayload struct {
	ID       int64  `json:"id,string"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
}

func toEntityCredentials(in []CredentialPayload) []entity.Credential {
	out := make([]entity.Credential, len(in))
	for i, c := range in {
		out[i] = entity.Credential(c)
	}
	return out
}

func fromEntityCredentials(in []entity.Credential) []CredentialPayload {
	out := make([]CredentialPayload, len(in))
	for i, c := range in {
		out[i] = CredentialPayload(c)
	}
	return out
}

type AccountCreateResponse struct {
	AccountNumber string `json:"account_number"`
}

func (AccountCreateResponse) Message() string {
	return "Account created. Store this number safely, it cannot be recovered."
}

type AccountVerifyRequest struct {
	AccountNumber string `json:"account_number"`
}

type AccountVerifyResponse struct{}

func (AccountVerifyResponse) Message() string {
	return "Account verified."
}

type BackupSaveRequest struct {
	AccountNumber string              `json:"account_number"`
	Credentials   []CredentialPayload `json:"credentials"`
}

type BackupSaveResponse struct{}

func (BackupSaveResponse) Message() string {
	return "Backup saved."
}

type BackupLatestRequest struct {
	AccountNumber string `json:"account_number"`
}

type BackupLatestResponse struct {
	Credentials []CredentialPayload `json:"credentials"`
	CreatedAt   time.Time           `json:"created_at"`
}

type CredentialDeleteRequest struct {
	AccountNumber string `json:"account_number"`
	ID            int64  `json:"id,string"`
}

type CredentialDeleteResponse struct{}

func (CredentialDeleteResponse) Message() string {
	return "Credential removed from backup."
}

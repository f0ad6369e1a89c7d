package entity

import "time"

// Account is a backup account. Only the keyed hash of the account number is
// ever stored; the plain number exists client-side only.
type Account struct {
	ID         int64
	NumberHash string
	CreatedAt  time.Time
}

// Credential is one entry of a backup payload, in the same wire shape the
// client uses.
type Credential struct {
	ID       int64  `json:"id,string"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
}

// BackupRecord is one stored backup. An account keeps at most one record;
// every save replaces the previous one.
type BackupRecord struct {
	ID          int64
	AccountID   int64
	Credentials []Credential
	CreatedAt   time.Time
}

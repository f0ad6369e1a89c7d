package entity

import "errors"

var (
	// ErrBusy indicates a remote write is already in flight for the session.
	ErrBusy = errors.New("vault: a backup write is already in progress")

	// ErrDuplicateSecret indicates the secret already exists in the store.
	ErrDuplicateSecret = errors.New("vault: secret already exists")

	// ErrRemoteUnavailable indicates the backup service could not be reached.
	ErrRemoteUnavailable = errors.New("vault: backup service unavailable")

	// ErrRemoteRejected indicates the backup service refused the request.
	ErrRemoteRejected = errors.New("vault: backup service rejected the request")
)

// SyncState describes where the in-memory store stands relative to the
// remote backup.
type SyncState int16

const (
	// SyncStateUnbound means no account is signed in.
	SyncStateUnbound SyncState = 0

	// SyncStateLoading means the initial load is still running.
	SyncStateLoading SyncState = 1

	// SyncStateSynced means the last write reached the remote backup.
	SyncStateSynced SyncState = 2

	// SyncStateDirty means local changes have not reached the remote backup.
	SyncStateDirty SyncState = 3
)

func (s SyncState) String() string {
	switch s {
	case SyncStateLoading:
		return "Loading"
	case SyncStateSynced:
		return "Synced"
	case SyncStateDirty:
		return "Dirty"
	default:
		return "Unbound"
	}
}

// BackupStatus summarizes the comparison between the local store and the
// latest remote backup.
type BackupStatus int16

const (
	// BackupStatusUnknown means the remote state could not be determined.
	BackupStatusUnknown BackupStatus = 0

	// BackupStatusNone means the account has no remote backup yet.
	BackupStatusNone BackupStatus = 1

	// BackupStatusInSync means local and remote hold the same secrets.
	BackupStatusInSync BackupStatus = 2

	// BackupStatusDiverged means local and remote differ.
	BackupStatusDiverged BackupStatus = 3
)

func (s BackupStatus) String() string {
	switch s {
	case BackupStatusNone:
		return "None"
	case BackupStatusInSync:
		return "InSync"
	case BackupStatusDiverged:
		return "Diverged"
	default:
		return "Unknown"
	}
}

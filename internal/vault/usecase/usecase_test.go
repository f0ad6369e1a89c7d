package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpvault/internal/pkg/config"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"github.com/shandysiswandi/otpvault/internal/pkg/otpauth"
	"github.com/shandysiswandi/otpvault/internal/pkg/validator"
	"github.com/shandysiswandi/otpvault/internal/vault/entity"
	"github.com/shandysiswandi/otpvault/internal/vault/usecase"
)

const testAccount = "123456789012345678901234"

type fakeBackend struct {
	mu sync.Mutex

	verifyErr error
	createNum string
	createErr error

	saveErr     error
	saved       [][]entity.Credential
	saveStarted chan struct{}
	saveRelease chan struct{}

	latest       []entity.Credential
	latestExists bool
	latestErr    error

	deleteErr error
	deleted   []int64
}

func (f *fakeBackend) AccountCreate(context.Context) (string, error) {
	return f.createNum, f.createErr
}

func (f *fakeBackend) AccountVerify(context.Context, string) error {
	return f.verifyErr
}

func (f *fakeBackend) BackupSave(_ context.Context, _ string, creds []entity.Credential) error {
	if f.saveStarted != nil {
		f.saveStarted <- struct{}{}
		<-f.saveRelease
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := make([]entity.Credential, len(creds))
	copy(cp, creds)
	f.saved = append(f.saved, cp)
	return nil
}

func (f *fakeBackend) BackupLatest(context.Context, string) ([]entity.Credential, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.latestExists, f.latestErr
}

func (f *fakeBackend) CredentialDelete(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeSnapshot struct {
	mu      sync.Mutex
	account string
	creds   map[string][]entity.Credential
	saveErr error
	cleared bool
}

func newFakeSnapshot() *fakeSnapshot {
	return &fakeSnapshot{creds: make(map[string][]entity.Credential)}
}

func (f *fakeSnapshot) Account(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account, nil
}

func (f *fakeSnapshot) SaveAccount(_ context.Context, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account = number
	return nil
}

func (f *fakeSnapshot) Credentials(_ context.Context, number string) ([]entity.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds[number], nil
}

func (f *fakeSnapshot) SaveCredentials(_ context.Context, number string, creds []entity.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := make([]entity.Credential, len(creds))
	copy(cp, creds)
	f.creds[number] = cp
	return nil
}

func (f *fakeSnapshot) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account = ""
	f.creds = make(map[string][]entity.Credential)
	f.cleared = true
	return nil
}

type fakeClock struct{ at time.Time }

func (f fakeClock) Now() time.Time { return f.at }

type seqNumberID struct{ next int64 }

func (s *seqNumberID) Generate() int64 {
	s.next++
	return s.next
}

type fixedStringID struct{ v string }

func (s fixedStringID) Generate() string { return s.v }

type fakeConfig struct {
	config.Config
	autoSaveInterval time.Duration
}

func (f fakeConfig) GetSecond(string) time.Duration { return f.autoSaveInterval }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestSession(t *testing.T, backend *fakeBackend, snap *fakeSnapshot) *usecase.Session {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	return usecase.New(usecase.Dependency{
		Backend:    backend,
		Snapshot:   snap,
		Validator:  v,
		UID:        &seqNumberID{},
		UUID:       fixedStringID{v: "batch-1"},
		Clock:      fakeClock{at: time.Unix(1_700_000_000, 0)},
		Instrument: instrument.NewNoop(),
	})
}

func signedIn(t *testing.T, backend *fakeBackend, snap *fakeSnapshot) *usecase.Session {
	t.Helper()

	s := newTestSession(t, backend, snap)
	if err := s.SignIn(context.Background(), usecase.SignInInput{AccountNumber: testAccount}); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	return s
}

func TestSignInMergesLocalAndRemote(t *testing.T) {
	snap := newFakeSnapshot()
	snap.account = testAccount
	snap.creds[testAccount] = []entity.Credential{
		{ID: 1, Name: "GitHub", Email: "alice@example.com", Secret: "JBSWY3DP"},
	}
	backend := &fakeBackend{
		latest: []entity.Credential{
			{ID: 9, Name: "GitHub (remote)", Secret: "JBSWY3DP"},
			{ID: 2, Name: "Mail", Secret: "GEZDGNBV"},
		},
		latestExists: true,
	}

	s := signedIn(t, backend, snap)

	creds := s.Credentials()
	if len(creds) != 2 {
		t.Fatalf("store size = %d, want 2", len(creds))
	}
	if creds[0].Name != "GitHub" || creds[0].ID != 1 {
		t.Fatalf("local entry lost priority: %+v", creds[0])
	}
	if s.State() != entity.SyncStateSynced {
		t.Fatalf("state = %v, want Synced", s.State())
	}
	if got := snap.creds[testAccount]; len(got) != 2 {
		t.Fatalf("merged snapshot not written: %d entries", len(got))
	}
}

func TestSignInUnknownAccount(t *testing.T) {
	backend := &fakeBackend{
		verifyErr: fmt.Errorf("%w: unknown account", entity.ErrRemoteRejected),
	}

	s := newTestSession(t, backend, newFakeSnapshot())

	err := s.SignIn(context.Background(), usecase.SignInInput{AccountNumber: testAccount})
	if !errors.Is(err, entity.ErrRemoteRejected) {
		t.Fatalf("got %v, want wrapped ErrRemoteRejected", err)
	}
	if s.AccountNumber() != "" {
		t.Fatalf("session bound despite rejected sign in")
	}
}

func TestSignInBadAccountNumber(t *testing.T) {
	s := newTestSession(t, &fakeBackend{}, newFakeSnapshot())

	err := s.SignIn(context.Background(), usecase.SignInInput{AccountNumber: "12345"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("got %v, want invalid input error", err)
	}
}

func TestSignInSurvivesRemoteFetchFailure(t *testing.T) {
	snap := newFakeSnapshot()
	snap.creds[testAccount] = []entity.Credential{
		{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"},
	}
	backend := &fakeBackend{
		latestErr: fmt.Errorf("%w: connection refused", entity.ErrRemoteUnavailable),
	}

	s := signedIn(t, backend, snap)

	if got := s.Credentials(); len(got) != 1 {
		t.Fatalf("local snapshot lost on network failure: %d entries", len(got))
	}
	if s.State() != entity.SyncStateDirty {
		t.Fatalf("state = %v, want Dirty", s.State())
	}
}

func TestCreateAccount(t *testing.T) {
	snap := newFakeSnapshot()
	backend := &fakeBackend{createNum: testAccount}

	s := newTestSession(t, backend, snap)

	number, err := s.CreateAccount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number != testAccount {
		t.Fatalf("number = %q", number)
	}
	if snap.account != testAccount {
		t.Fatalf("account number not persisted locally")
	}
	if s.State() != entity.SyncStateSynced {
		t.Fatalf("state = %v, want Synced", s.State())
	}
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	snap := newFakeSnapshot()
	backend := &fakeBackend{}
	s := signedIn(t, backend, snap)

	cred, err := s.Add(context.Background(), usecase.AddInput{
		Name:   "GitHub",
		Email:  "alice@example.com",
		Secret: "jbsw y3dp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cred.ID == 0 {
		t.Fatalf("credential has no id")
	}
	if cred.Secret != "JBSWY3DP" {
		t.Fatalf("secret not normalized: %q", cred.Secret)
	}
	if backend.saveCount() != 1 {
		t.Fatalf("remote write count = %d, want 1", backend.saveCount())
	}
	if got := snap.creds[testAccount]; len(got) != 1 {
		t.Fatalf("snapshot not written: %d entries", len(got))
	}
	if s.State() != entity.SyncStateSynced {
		t.Fatalf("state = %v, want Synced", s.State())
	}
}

func TestAddDuplicateSecret(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	if _, err := s.Add(context.Background(), usecase.AddInput{Name: "A", Secret: "JBSWY3DP"}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	_, err := s.Add(context.Background(), usecase.AddInput{Name: "B", Secret: "jbswy3dp"})
	if !errors.Is(err, entity.ErrDuplicateSecret) {
		t.Fatalf("got %v, want ErrDuplicateSecret", err)
	}
}

func TestAddUnusableSecret(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	_, err := s.Add(context.Background(), usecase.AddInput{Name: "A", Secret: "A"})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("got %v, want invalid input error", err)
	}
}

func TestAddRollsBackOnRemoteFailure(t *testing.T) {
	snap := newFakeSnapshot()
	backend := &fakeBackend{
		saveErr: fmt.Errorf("%w: connection refused", entity.ErrRemoteUnavailable),
	}
	s := signedIn(t, backend, snap)

	_, err := s.Add(context.Background(), usecase.AddInput{Name: "GitHub", Secret: "JBSWY3DP"})
	if err == nil {
		t.Fatalf("expected error")
	}

	if got := s.Credentials(); len(got) != 0 {
		t.Fatalf("entry kept after failed remote write: %+v", got)
	}
	if got := snap.creds[testAccount]; len(got) != 0 {
		t.Fatalf("snapshot kept rolled-back entry: %+v", got)
	}
}

func TestAddFromURI(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	cred, err := s.AddFromURI(context.Background(),
		"otpauth://totp/Acme%20Corp:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Acme%20Corp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cred.Name != "Acme Corp" || cred.Email != "alice@example.com" {
		t.Fatalf("bad provisioning mapping: %+v", cred)
	}

	if _, err := s.AddFromURI(context.Background(), "https://example.com"); err == nil {
		t.Fatalf("expected malformed uri to fail")
	}
}

func TestPersistEmptyStoreGuard(t *testing.T) {
	backend := &fakeBackend{}
	s := signedIn(t, backend, newFakeSnapshot())

	// The remote backup gains content after sign-in; an empty store must not
	// overwrite it.
	backend.mu.Lock()
	backend.latest = []entity.Credential{{ID: 1, Name: "Mail", Secret: "GEZDGNBV"}}
	backend.latestExists = true
	backend.mu.Unlock()

	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.saveCount() != 0 {
		t.Fatalf("empty store was written over a non-empty remote backup")
	}
}

func TestPersistEmptyStoreGuardNetworkFailure(t *testing.T) {
	backend := &fakeBackend{
		latestErr: fmt.Errorf("%w: timeout", entity.ErrRemoteUnavailable),
	}
	s := signedIn(t, backend, newFakeSnapshot())

	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.saveCount() != 1 {
		t.Fatalf("guard failure must not block the write: %d writes", backend.saveCount())
	}
}

func TestPersistConcurrentIsBusy(t *testing.T) {
	backend := &fakeBackend{
		saveStarted: make(chan struct{}, 1),
		saveRelease: make(chan struct{}),
	}
	s := signedIn(t, backend, newFakeSnapshot())

	done := make(chan error, 1)
	go func() {
		done <- s.Persist(context.Background())
	}()

	<-backend.saveStarted

	if err := s.Persist(context.Background()); !errors.Is(err, entity.ErrBusy) {
		t.Fatalf("got %v, want ErrBusy", err)
	}
	if err := s.SignOut(context.Background()); !errors.Is(err, entity.ErrBusy) {
		t.Fatalf("sign out during write: got %v, want ErrBusy", err)
	}

	close(backend.saveRelease)
	if err := <-done; err != nil {
		t.Fatalf("first persist failed: %v", err)
	}

	// Once the write finished the session accepts new work.
	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist after release failed: %v", err)
	}
}

func TestEditUpdatesMetadataOnly(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	cred, err := s.Add(context.Background(), usecase.AddInput{Name: "GitHub", Secret: "JBSWY3DP"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err = s.Edit(context.Background(), usecase.EditInput{
		ID:    cred.ID,
		Name:  "GitHub Work",
		Email: "work@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Credentials()[0]
	if got.Name != "GitHub Work" || got.Email != "work@example.com" {
		t.Fatalf("metadata not updated: %+v", got)
	}
	if got.Secret != "JBSWY3DP" {
		t.Fatalf("secret changed on edit: %q", got.Secret)
	}

	err = s.Edit(context.Background(), usecase.EditInput{ID: 999, Name: "X"})
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestDeleteIsRemoteFirst(t *testing.T) {
	backend := &fakeBackend{}
	s := signedIn(t, backend, newFakeSnapshot())

	cred, err := s.Add(context.Background(), usecase.AddInput{Name: "GitHub", Secret: "JBSWY3DP"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	backend.mu.Lock()
	backend.deleteErr = fmt.Errorf("%w: timeout", entity.ErrRemoteUnavailable)
	backend.mu.Unlock()

	if err := s.Delete(context.Background(), cred.ID); err == nil {
		t.Fatalf("expected remote failure to surface")
	}
	if len(s.Credentials()) != 1 {
		t.Fatalf("local entry removed despite remote failure")
	}

	backend.mu.Lock()
	backend.deleteErr = nil
	backend.mu.Unlock()

	if err := s.Delete(context.Background(), cred.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Credentials()) != 0 {
		t.Fatalf("entry not removed after confirmed remote delete")
	}
}

func TestSignOutClearsEverything(t *testing.T) {
	snap := newFakeSnapshot()
	s := signedIn(t, &fakeBackend{}, snap)

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.AccountNumber() != "" || s.State() != entity.SyncStateUnbound {
		t.Fatalf("session not unbound: %q %v", s.AccountNumber(), s.State())
	}
	if !snap.cleared {
		t.Fatalf("snapshot not cleared")
	}
}

func TestCodesAndSecondsRemaining(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	if _, err := s.Add(context.Background(), usecase.AddInput{Name: "GitHub", Secret: "JBSWY3DP"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	at := time.Unix(59, 0)
	codes := s.Codes(at)
	if len(codes) != 1 {
		t.Fatalf("codes length = %d, want 1", len(codes))
	}
	if len(codes[0].Code) != 6 {
		t.Fatalf("code %q is not 6 digits", codes[0].Code)
	}

	single, err := s.CurrentCode(codes[0].ID, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if single != codes[0].Code {
		t.Fatalf("CurrentCode disagrees with Codes: %q vs %q", single, codes[0].Code)
	}

	if got := s.SecondsRemaining(time.Unix(0, 0)); got != 29 {
		t.Fatalf("SecondsRemaining = %d, want 29", got)
	}

	if _, err := s.CurrentCode(12345, at); err == nil {
		t.Fatalf("expected unknown id to fail")
	}
}

func TestExportMigration(t *testing.T) {
	s := signedIn(t, &fakeBackend{}, newFakeSnapshot())

	if _, err := s.ExportMigration(context.Background()); err == nil {
		t.Fatalf("expected empty store export to fail")
	}

	if _, err := s.Add(context.Background(), usecase.AddInput{
		Name:  "GitHub",
		Email: "alice@example.com", Secret: "JBSWY3DP",
	}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	blob, err := s.ExportMigration(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := otpauth.ParseMigration(blob)
	if err != nil {
		t.Fatalf("export does not round trip: %v", err)
	}
	if m.BatchID != "batch-1" || len(m.OTPParameters) != 1 {
		t.Fatalf("bad batch: %+v", m)
	}
	if m.OTPParameters[0].Name != "GitHub:alice@example.com" {
		t.Fatalf("bad entry label: %q", m.OTPParameters[0].Name)
	}
}

func TestBackupStatus(t *testing.T) {
	backend := &fakeBackend{}
	s := signedIn(t, backend, newFakeSnapshot())

	status, err := s.BackupStatus(context.Background())
	if err != nil || status != entity.BackupStatusNone {
		t.Fatalf("got %v/%v, want None", status, err)
	}

	if _, err := s.Add(context.Background(), usecase.AddInput{Name: "GitHub", Secret: "JBSWY3DP"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	backend.mu.Lock()
	backend.latest = []entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}}
	backend.latestExists = true
	backend.mu.Unlock()

	status, err = s.BackupStatus(context.Background())
	if err != nil || status != entity.BackupStatusInSync {
		t.Fatalf("got %v/%v, want InSync", status, err)
	}

	backend.mu.Lock()
	backend.latest = []entity.Credential{{ID: 2, Name: "Mail", Secret: "GEZDGNBV"}}
	backend.mu.Unlock()

	status, err = s.BackupStatus(context.Background())
	if err != nil || status != entity.BackupStatusDiverged {
		t.Fatalf("got %v/%v, want Diverged", status, err)
	}

	backend.mu.Lock()
	backend.latestErr = fmt.Errorf("%w: timeout", entity.ErrRemoteUnavailable)
	backend.mu.Unlock()

	status, err = s.BackupStatus(context.Background())
	if err != nil || status != entity.BackupStatusUnknown {
		t.Fatalf("got %v/%v, want Unknown on network failure", status, err)
	}
}

func TestResume(t *testing.T) {
	snap := newFakeSnapshot()
	snap.account = testAccount
	snap.creds[testAccount] = []entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}}

	s := newTestSession(t, &fakeBackend{}, snap)

	found, err := s.Resume(context.Background())
	if err != nil || !found {
		t.Fatalf("got %v/%v, want found", found, err)
	}
	if s.AccountNumber() != testAccount {
		t.Fatalf("account not restored")
	}
	if len(s.Credentials()) != 1 {
		t.Fatalf("snapshot not loaded")
	}

	fresh := newTestSession(t, &fakeBackend{}, newFakeSnapshot())
	found, err = fresh.Resume(context.Background())
	if err != nil || found {
		t.Fatalf("got %v/%v, want not found", found, err)
	}
}

func newAutoSaveSession(t *testing.T, backend *fakeBackend, snap *fakeSnapshot, interval time.Duration) *usecase.Session {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	return usecase.New(usecase.Dependency{
		Backend:    backend,
		Snapshot:   snap,
		Validator:  v,
		Config:     fakeConfig{autoSaveInterval: interval},
		UID:        &seqNumberID{},
		UUID:       fixedStringID{v: "batch-1"},
		Clock:      fakeClock{at: time.Unix(1_700_000_000, 0)},
		Instrument: instrument.NewNoop(),
		Goroutine:  goroutine.NewManager(4),
	})
}

func TestAutoSavePersistsSyncedStore(t *testing.T) {
	snap := newFakeSnapshot()
	snap.account = testAccount
	snap.creds[testAccount] = []entity.Credential{
		{ID: 1, Name: "GitHub", Email: "alice@example.com", Secret: "JBSWY3DP"},
	}
	backend := &fakeBackend{
		latest:       []entity.Credential{{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"}},
		latestExists: true,
	}

	s := newAutoSaveSession(t, backend, snap, 20*time.Millisecond)
	if err := s.SignIn(context.Background(), usecase.SignInInput{AccountNumber: testAccount}); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if s.State() != entity.SyncStateSynced {
		t.Fatalf("state = %v, want Synced", s.State())
	}
	if !s.LastBackupAt().IsZero() {
		t.Fatalf("last backup time set before any remote write")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartAutoSave(ctx)

	waitFor(t, "a remote write from a clean store", func() bool {
		return backend.saveCount() >= 1
	})

	if !s.LastBackupAt().Equal(time.Unix(1_700_000_000, 0)) {
		t.Fatalf("last backup time = %v, want clock time", s.LastBackupAt())
	}
}

func TestAutoSaveSwallowsRemoteFailures(t *testing.T) {
	snap := newFakeSnapshot()
	snap.account = testAccount
	snap.creds[testAccount] = []entity.Credential{
		{ID: 1, Name: "GitHub", Secret: "JBSWY3DP"},
	}
	backend := &fakeBackend{saveErr: errors.New("backup service down")}

	s := newAutoSaveSession(t, backend, snap, 20*time.Millisecond)
	if err := s.SignIn(context.Background(), usecase.SignInInput{AccountNumber: testAccount}); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartAutoSave(ctx)

	waitFor(t, "a failed remote write to mark the store dirty", func() bool {
		return s.State() == entity.SyncStateDirty
	})

	backend.mu.Lock()
	backend.saveErr = nil
	backend.mu.Unlock()

	waitFor(t, "the loop to recover after the backend comes back", func() bool {
		return backend.saveCount() >= 1 && s.State() == entity.SyncStateSynced
	})

	if s.LastBackupAt().IsZero() {
		t.Fatalf("last backup time not set after recovery")
	}
}

func TestExportURI(t *testing.T) {
	snap := newFakeSnapshot()
	snap.account = testAccount
	snap.creds[testAccount] = []entity.Credential{
		{ID: 1, Name: "GitHub", Email: "alice@example.com", Secret: "JBSWY3DP"},
	}
	s := signedIn(t, &fakeBackend{}, snap)

	uri, err := s.ExportURI(1)
	if err != nil {
		t.Fatalf("export uri failed: %v", err)
	}

	p, err := otpauth.Parse(uri)
	if err != nil {
		t.Fatalf("exported uri does not parse: %v", err)
	}
	if p.Issuer != "GitHub" || p.Email != "alice@example.com" || p.Secret != "JBSWY3DP" {
		t.Fatalf("round trip mismatch: %+v", p)
	}

	_, err = s.ExportURI(42)
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("unknown id error = %v, want not found", err)
	}
}

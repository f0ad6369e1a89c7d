package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/otpauth"
)

// ExportMigration renders the whole store as a batch migration blob that
// other authenticator apps can import.
func (s *Session) ExportMigration(ctx context.Context) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "ExportMigration")
	defer span.End()

	creds := s.Credentials()
	if len(creds) == 0 {
		return nil, goerror.NewBusiness("Nothing to export", goerror.CodeNotFound)
	}

	entries := make([]otpauth.MigrationEntry, 0, len(creds))
	for _, c := range creds {
		entries = append(entries, otpauth.NewMigrationEntry(c.Name, c.Account(), c.Secret))
	}

	blob, err := otpauth.BuildMigration(s.uuid.Generate(), entries)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build migration blob", "error", err)
		return nil, goerror.NewServer(err)
	}

	return blob, nil
}

// ExportURI renders one credential as a single-account provisioning URI,
// suitable for display as a QR code.
func (s *Session) ExportURI(id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.creds {
		if s.creds[i].ID == id {
			c := s.creds[i]
			return otpauth.Build(c.Name, c.Account(), c.Secret), nil
		}
	}

	return "", goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpvault/internal/backup/entity"
	"github.com/shandysiswandi/otpvault/internal/pkg/goerror"
	"github.com/shandysiswandi/otpvault/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("backup.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateAccount(ctx context.Context, account entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO backup_accounts (id, number_hash, created_at) VALUES ($1, $2, $3)`,
		account.ID, account.NumberHash, account.CreatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) GetAccountByNumberHash(ctx context.Context, numberHash string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByNumberHash")
	defer func() { s.endSpan(span, err) }()

	var account entity.Account
	err = s.conn.QueryRow(ctx,
		`SELECT id, number_hash, created_at FROM backup_accounts WHERE number_hash = $1`,
		numberHash).Scan(&account.ID, &account.NumberHash, &account.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &account, nil
}

// ReplaceBackup deletes any previous backup for the account and inserts the
// new record inside one transaction.
func (s *DB) ReplaceBackup(ctx context.Context, rec entity.BackupRecord) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceBackup")
	defer func() { s.endSpan(span, err) }()

	payload, err := json.Marshal(rec.Credentials)
	if err != nil {
		return fmt.Errorf("db: marshal credentials: %w", err)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return s.mapError(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx,
		`DELETE FROM backup_records WHERE account_id = $1`, rec.AccountID); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO backup_records (id, account_id, credentials, created_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.AccountID, payload, rec.CreatedAt); err != nil {
		return s.mapError(err)
	}

	err = s.mapError(tx.Commit(ctx))
	return err
}

func (s *DB) GetLatestBackup(ctx context.Context, accountID int64) (_ *entity.BackupRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestBackup")
	defer func() { s.endSpan(span, err) }()

	var (
		rec     entity.BackupRecord
		payload []byte
	)
	err = s.conn.QueryRow(ctx,
		`SELECT id, account_id, credentials, created_at
		 FROM backup_records WHERE account_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		accountID).Scan(&rec.ID, &rec.AccountID, &payload, &rec.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	if err = json.Unmarshal(payload, &rec.Credentials); err != nil {
		return nil, fmt.Errorf("db: unmarshal credentials: %w", err)
	}

	return &rec, nil
}

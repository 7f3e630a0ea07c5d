package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/identity-server/internal/model"
)

// DBTX is implemented by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ model.Store = (*Store)(nil)

// Store vends repositories bound to one DBTX.
type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Users() model.UserStore {
	return NewUserRepository(s.db)
}

func (s *Store) Sessions() model.SessionStore {
	return NewSessionRepository(s.db)
}

func (s *Store) Verifications() model.VerificationStore {
	return NewVerificationRepository(s.db)
}

func (s *Store) Preferences() model.PreferenceStore {
	return NewPreferenceRepository(s.db)
}

// Lock takes pg_advisory_xact_lock on LockKey(table, keys). Outside a
// transaction the lock is released as soon as the statement finishes.
func (s *Store) Lock(ctx context.Context, table string, keys map[string]string) error {
	const query = `SELECT pg_advisory_xact_lock($1)`

	if _, err := s.db.ExecContext(ctx, query, LockKey(table, keys)); err != nil {
		return fmt.Errorf("failed to take advisory lock on %s: %w", table, err)
	}
	return nil
}

const pgUniqueViolation = "23505"

// uniqueViolation returns the violated constraint name, if err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

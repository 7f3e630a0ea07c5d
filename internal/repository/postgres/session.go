package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

const sessionColumns = `user_session_id, user_id, device_id, COALESCE(host(ip_address), ''), expires_at, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

func scanSession(row rowScanner) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.IPAddress, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) (model.Session, error) {
	query := `INSERT INTO user_sessions (user_session_id, user_id, device_id, ip_address, expires_at)
			  VALUES ($1, $2, $3, $4::inet, $5)
			  RETURNING ` + sessionColumns

	saved, err := scanSession(r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.DeviceID, nullString(session.IPAddress), session.ExpiresAt,
	))
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return saved, nil
}

func (r *SessionRepository) GetLiveForUpdate(ctx context.Context, id uuid.UUID, now time.Time) (model.Session, error) {
	query := `SELECT ` + sessionColumns + `
			  FROM user_sessions
			  WHERE user_session_id = $1 AND expires_at > $2
			  FOR UPDATE`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

func (r *SessionRepository) ExpireByDevice(ctx context.Context, deviceID uuid.UUID, now time.Time) (int64, error) {
	const query = `UPDATE user_sessions SET expires_at = $2 WHERE device_id = $1 AND expires_at > $2`

	res, err := r.db.ExecContext(ctx, query, deviceID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire device sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to expire device sessions: %w", err)
	}

	return n, nil
}

func (r *SessionRepository) Expire(ctx context.Context, id uuid.UUID, now time.Time) error {
	const query = `UPDATE user_sessions SET expires_at = $2 WHERE user_session_id = $1 AND expires_at > $2`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *SessionRepository) ListLiveByDevice(ctx context.Context, deviceID uuid.UUID, now time.Time) ([]model.Session, error) {
	query := `SELECT ` + sessionColumns + `
			  FROM user_sessions
			  WHERE device_id = $1 AND expires_at > $2
			  ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, deviceID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}

	return sessions, nil
}

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

var _ model.VerificationStore = (*VerificationRepository)(nil)

const verificationColumns = `access_verification_id, email_or_phone, type, code, token, attempts, expires_at, resendable_at, created_at, updated_at`

type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{
		db: db,
	}
}

func scanVerification(row rowScanner) (model.Verification, error) {
	var (
		v   model.Verification
		typ string
	)
	err := row.Scan(
		&v.ID, &v.EmailOrPhone, &typ, &v.Code, &v.Token, &v.Attempts,
		&v.ExpiresAt, &v.ResendableAt, &v.CreatedAt, &v.UpdatedAt,
	)
	v.Type = model.VerificationType(typ)
	return v, err
}

func (r *VerificationRepository) getOne(ctx context.Context, query string, args ...any) (model.Verification, error) {
	v, err := scanVerification(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Verification{}, model.ErrNotFound
		}
		return model.Verification{}, fmt.Errorf("failed to get access verification: %w", err)
	}
	return v, nil
}

func (r *VerificationRepository) Create(ctx context.Context, v model.Verification) (model.Verification, error) {
	query := `INSERT INTO access_verifications
			  (access_verification_id, email_or_phone, type, code, token, attempts, expires_at, resendable_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + verificationColumns

	saved, err := scanVerification(r.db.QueryRowContext(ctx, query,
		v.ID, v.EmailOrPhone, string(v.Type), v.Code, v.Token, v.Attempts, v.ExpiresAt, v.ResendableAt,
	))
	if err != nil {
		return model.Verification{}, fmt.Errorf("failed to create access verification: %w", err)
	}

	return saved, nil
}

func (r *VerificationRepository) GetLiveForUpdate(ctx context.Context, emailOrPhone string, verificationType model.VerificationType, now time.Time) (model.Verification, error) {
	query := `SELECT ` + verificationColumns + `
			  FROM access_verifications
			  WHERE email_or_phone = $1 AND type = $2 AND expires_at > $3
			  ORDER BY created_at DESC
			  LIMIT 1
			  FOR UPDATE`

	return r.getOne(ctx, query, emailOrPhone, string(verificationType), now)
}

func (r *VerificationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Verification, error) {
	query := `SELECT ` + verificationColumns + `
			  FROM access_verifications
			  WHERE access_verification_id = $1
			  FOR UPDATE`

	return r.getOne(ctx, query, id)
}

func (r *VerificationRepository) GetLiveByTokenForUpdate(ctx context.Context, emailOrPhone, token string, verificationType model.VerificationType, now time.Time) (model.Verification, error) {
	query := `SELECT ` + verificationColumns + `
			  FROM access_verifications
			  WHERE email_or_phone = $1 AND token = $2 AND type = $3 AND expires_at > $4
			  FOR UPDATE`

	return r.getOne(ctx, query, emailOrPhone, token, string(verificationType), now)
}

func (r *VerificationRepository) Update(ctx context.Context, v model.Verification) error {
	const query = `UPDATE access_verifications
			  SET attempts = $2, token = $3, expires_at = $4
			  WHERE access_verification_id = $1`

	res, err := r.db.ExecContext(ctx, query, v.ID, v.Attempts, v.Token, v.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to update access verification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update access verification: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *VerificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM access_verifications WHERE access_verification_id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete access verification: %w", err)
	}

	return nil
}

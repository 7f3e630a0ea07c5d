package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `user_id, email, phone, google_user_id, name, banned_at, local_tz_offset, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Phone, &user.GoogleUserID, &user.Name,
		&user.BannedAt, &user.LocalTZOffset, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "user_id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *UserRepository) GetByGoogleUserID(ctx context.Context, googleUserID string) (model.User, error) {
	return r.getBy(ctx, "google_user_id", googleUserID)
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (user_id, email, phone, google_user_id, name, local_tz_offset)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Phone, user.GoogleUserID, user.Name, user.LocalTZOffset,
	))
	if err != nil {
		return model.User{}, mapUserError("create", err)
	}

	return saved, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users
			  SET email = $2, phone = $3, google_user_id = $4, name = $5, local_tz_offset = $6
			  WHERE user_id = $1
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Phone, user.GoogleUserID, user.Name, user.LocalTZOffset,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, mapUserError("update", err)
	}

	return saved, nil
}

// Delete removes the user. Sessions and preferences go with it by cascade.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}

	return nil
}

func mapUserError(op string, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "users_email_key":
			return model.ErrEmailTaken
		case "users_phone_key":
			return model.ErrPhoneTaken
		case "users_google_user_id_key":
			return model.ErrGoogleUserIDTaken
		}
	}
	return fmt.Errorf("failed to %s user: %w", op, err)
}

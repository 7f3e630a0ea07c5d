package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

var _ model.PreferenceStore = (*PreferenceRepository)(nil)

const preferenceColumns = `user_preference_id, user_id, name, value, created_at, updated_at`

type PreferenceRepository struct {
	db DBTX
}

func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{
		db: db,
	}
}

func scanPreference(row rowScanner) (model.Preference, error) {
	var (
		p     model.Preference
		name  string
		value []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &name, &value, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Preference{}, err
	}
	p.Name = model.PreferenceName(name)
	if err := json.Unmarshal(value, &p.Value); err != nil {
		return model.Preference{}, fmt.Errorf("failed to decode preference %s: %w", name, err)
	}
	return p, nil
}

func (r *PreferenceRepository) Get(ctx context.Context, userID uuid.UUID, name model.PreferenceName) (model.Preference, error) {
	query := `SELECT ` + preferenceColumns + `
			  FROM user_preferences
			  WHERE user_id = $1 AND name = $2`

	p, err := scanPreference(r.db.QueryRowContext(ctx, query, userID, string(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Preference{}, model.ErrNotFound
		}
		return model.Preference{}, fmt.Errorf("failed to get preference: %w", err)
	}

	return p, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, p model.Preference) (model.Preference, error) {
	query := `INSERT INTO user_preferences (user_preference_id, user_id, name, value)
			  VALUES ($1, $2, $3, $4::jsonb)
			  ON CONFLICT (name, user_id) DO UPDATE SET value = EXCLUDED.value
			  RETURNING ` + preferenceColumns

	value, err := json.Marshal(p.Value)
	if err != nil {
		return model.Preference{}, fmt.Errorf("failed to encode preference: %w", err)
	}

	saved, err := scanPreference(r.db.QueryRowContext(ctx, query, p.ID, p.UserID, string(p.Name), string(value)))
	if err != nil {
		return model.Preference{}, fmt.Errorf("failed to upsert preference: %w", err)
	}

	return saved, nil
}

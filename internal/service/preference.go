package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

type Preference struct {
	store  model.Store
	logger *logger.Logger
}

func NewPreference(store model.Store, logger *logger.Logger) *Preference {
	return &Preference{store: store, logger: logger}
}

// Load returns the stored value or the preference default when unset.
func (s *Preference) Load(ctx context.Context, userID uuid.UUID, name model.PreferenceName) (bool, error) {
	def, ok := name.Default()
	if !ok {
		return false, apiErrors.NewRequestDataInvalid("name")
	}

	p, err := s.store.Preferences().Get(ctx, userID, name)
	if errors.Is(err, model.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		s.logger.Error("Preference service: failed to load preference",
			"user_id", userID,
			"name", name,
			"error", err.Error())
		return false, fmt.Errorf("failed to load preference: %w", err)
	}
	return p.Value, nil
}

func (s *Preference) Set(ctx context.Context, userID uuid.UUID, name model.PreferenceName, value bool) (bool, error) {
	if _, ok := name.Default(); !ok {
		return false, apiErrors.NewRequestDataInvalid("name")
	}

	p, err := s.store.Preferences().Upsert(ctx, model.Preference{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Value:  value,
	})
	if errors.Is(err, model.ErrNotFound) {
		return false, apiErrors.New(apiErrors.CodeUserNotFound)
	}
	if err != nil {
		s.logger.Error("Preference service: failed to set preference",
			"user_id", userID,
			"name", name,
			"error", err.Error())
		return false, fmt.Errorf("failed to set preference: %w", err)
	}
	return p.Value, nil
}

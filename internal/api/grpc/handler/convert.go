package handler

import (
	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	"github.com/dtroode/identity-server/internal/model"
)

func toTokenPair(p model.TokenPair) *identityv1.TokenPair {
	return &identityv1.TokenPair{
		AccessToken:   p.AccessToken,
		RefreshToken:  p.RefreshToken,
		UserSessionID: p.UserSessionID.String(),
		DeviceID:      p.DeviceID.String(),
	}
}

func toUser(u model.User) *identityv1.User {
	return &identityv1.User{
		UserID:          u.ID.String(),
		Email:           u.Email,
		Phone:           u.Phone,
		Name:            u.Name,
		GoogleConnected: u.GoogleUserID != nil,
		LocalTZOffset:   u.LocalTZOffset,
		CreatedAt:       u.CreatedAt,
	}
}

// parseOptionalID parses an optional id field. Empty input yields nil.
func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apiErrors.NewRequestDataInvalid(field).GRPCStatus().Err()
	}
	return id, nil
}

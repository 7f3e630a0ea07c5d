package model

import "github.com/google/uuid"

// TokenManager generates and validates access/refresh tokens.
// Parse methods return ErrTokenExpired for well-formed tokens past expiry
// and ErrTokenInvalid otherwise.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	GenerateRefreshToken(userSessionID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
}

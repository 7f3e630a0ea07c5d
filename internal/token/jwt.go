package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/model"
)

// Token subjects distinguish access tokens from refresh tokens.
const (
	SubjectAccess  = "access-token"
	SubjectRefresh = "refresh-token"
)

// Claims represents JWT claims. Access tokens carry UserID, refresh tokens
// carry UserSessionID.
type Claims struct {
	jwt.RegisteredClaims
	UserID        *uuid.UUID `json:"userId,omitempty"`
	UserSessionID *uuid.UUID `json:"userSessionId,omitempty"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ model.TokenManager = (*JWT)(nil)

// Option configures JWT.
type Option func(*JWT)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) { j.now = now }
}

// NewJWT creates a new JWT token manager with the provided secret key and lifetimes.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration, opts ...Option) *JWT {
	j := &JWT{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// GenerateAccessToken creates a short-lived access token for the user.
func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, error) {
	token, err := j.sign(Claims{
		RegisteredClaims: j.registered(SubjectAccess, j.accessTTL),
		UserID:           &userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a long-lived refresh token for the session.
func (j *JWT) GenerateRefreshToken(userSessionID uuid.UUID) (string, error) {
	token, err := j.sign(Claims{
		RegisteredClaims: j.registered(SubjectRefresh, j.refreshTTL),
		UserSessionID:    &userSessionID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// ParseAccessToken validates an access token and returns the user ID.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, SubjectAccess)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.UserID == nil || *claims.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("access token has no user id: %w", model.ErrTokenInvalid)
	}
	return *claims.UserID, nil
}

// ParseRefreshToken validates a refresh token and returns the session ID.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, SubjectRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.UserSessionID == nil || *claims.UserSessionID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("refresh token has no session id: %w", model.ErrTokenInvalid)
	}
	return *claims.UserSessionID, nil
}

func (j *JWT) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (j *JWT) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
}

func (j *JWT) parse(tokenString, subject string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenInvalidSubject):
		return nil, fmt.Errorf("unexpected token subject: %w", model.ErrTokenInvalid)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%s: %w", subject, model.ErrTokenExpired)
	default:
		return nil, fmt.Errorf("failed to parse %s: %v: %w", subject, err, model.ErrTokenInvalid)
	}
}

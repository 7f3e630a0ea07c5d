// Package google verifies Google Sign-In identity tokens.
package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/model"
)

type validator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Provider verifies identity tokens issued to the configured OAuth client.
type Provider struct {
	clientID  string
	validator validator
}

var _ model.IdentityProvider = (*Provider)(nil)

// New creates a Provider. An empty client id yields a provider that rejects
// every token with model.ErrIdentityProviderUnsupported.
func New(ctx context.Context, cfg config.Google) (*Provider, error) {
	if cfg.ClientID == "" {
		return &Provider{}, nil
	}

	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &Provider{clientID: cfg.ClientID, validator: v}, nil
}

// Verify validates token and returns the Google account it belongs to.
// Tokens without a subject or a verified email are invalid.
func (p *Provider) Verify(ctx context.Context, token string) (model.ExternalIdentity, error) {
	if p.clientID == "" || p.validator == nil {
		return model.ExternalIdentity{}, model.ErrIdentityProviderUnsupported
	}

	payload, err := p.validator.Validate(ctx, token, p.clientID)
	if err != nil {
		return model.ExternalIdentity{}, fmt.Errorf("%w: %v", model.ErrIdentityTokenInvalid, err)
	}
	if payload.Subject == "" {
		return model.ExternalIdentity{}, model.ErrIdentityTokenInvalid
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return model.ExternalIdentity{}, model.ErrIdentityTokenInvalid
	}

	identity := model.ExternalIdentity{UserID: payload.Subject, Email: email}
	identity.Name, _ = payload.Claims["name"].(string)

	return identity, nil
}

// Package client is a Go SDK for the identity services. It attaches the
// held access token to every call and transparently rotates it once when
// the server reports it expired or invalid.
package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	"github.com/dtroode/identity-server/internal/logger"
)

// Client calls the identity services on one connection.
type Client struct {
	Auth         *identityv1.AuthClient
	Verification *identityv1.VerificationClient
	User         *identityv1.UserClient

	conn          *grpc.ClientConn
	tokens        *TokenStore
	lock          *ReauthLock
	reauthTimeout time.Duration
	logger        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithReauthTimeout changes how long concurrent calls wait for a
// reauthentication in progress.
func WithReauthTimeout(d time.Duration) Option {
	return func(c *Client) { c.reauthTimeout = d }
}

// WithTokens starts the client signed in with pair.
func WithTokens(pair identityv1.TokenPair) Option {
	return func(c *Client) { c.tokens.Set(pair) }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New connects to target. dialOpts are passed to grpc.NewClient after the
// client's own interceptor.
func New(target string, dialOpts []grpc.DialOption, opts ...Option) (*Client, error) {
	c := &Client{
		tokens: &TokenStore{},
		logger: logger.NewWithFormat(io.Discard, 0, "text"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lock = NewReauthLock(c.reauthTimeout)

	dialOpts = append([]grpc.DialOption{grpc.WithChainUnaryInterceptor(c.intercept)}, dialOpts...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	c.conn = conn
	c.Auth = identityv1.NewAuthClient(conn)
	c.Verification = identityv1.NewVerificationClient(conn)
	c.User = identityv1.NewUserClient(conn)
	return c, nil
}

// Tokens returns the currently held token pair.
func (c *Client) Tokens() identityv1.TokenPair {
	return c.tokens.Get()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Reauthenticate rotates the held refresh token. Concurrent calls are
// serialized by the reauth lock and each rotates whatever refresh token is
// held when its turn comes.
func (c *Client) Reauthenticate(ctx context.Context) error {
	release, acquired := c.lock.Acquire(ctx)
	defer release()
	if !acquired {
		c.logger.Warn("Client: reauthentication lock wait timed out, proceeding without it")
	}

	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		return apiErrors.New(apiErrors.CodeNotSignedIn)
	}

	_, err := c.Auth.Reauthenticate(ctx, &identityv1.ReauthenticateRequest{RefreshToken: refresh})
	return err
}

func (c *Client) intercept(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == identityv1.AuthReauthenticateFullMethod {
		err := invoker(ctx, method, req, reply, cc, opts...)
		c.observe(method, req, reply, "", err)
		return err
	}

	access := c.tokens.AccessToken()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	c.observe(method, req, reply, access, err)

	if err == nil || access == "" || c.tokens.RefreshToken() == "" {
		return err
	}
	if !apiErrors.HasCode(err, apiErrors.CodeAccessTokenExpired, apiErrors.CodeAccessTokenInvalid) {
		return err
	}

	c.logger.Debug("Client: access token rejected, reauthenticating",
		"method", method)

	if rerr := c.Reauthenticate(ctx); rerr != nil {
		c.logger.Info("Client: reauthentication failed",
			"error", rerr.Error())
		return rerr
	}

	access = c.tokens.AccessToken()
	err = invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	c.observe(method, req, reply, access, err)
	return err
}

// observe keeps the token store in step with call results. access is the
// access token the call carried.
func (c *Client) observe(method string, req, reply any, access string, err error) {
	if err != nil {
		switch {
		case apiErrors.HasCode(err, apiErrors.CodeUserBanned):
			c.tokens.Clear()
		case apiErrors.HasCode(err, apiErrors.CodeRefreshTokenInvalid, apiErrors.CodeSessionInvalid):
			// A call made with superseded tokens must not drop the pair a
			// concurrent rotation has stored since.
			if c.sentHeld(method, req, access) {
				c.tokens.Clear()
			}
		}
		return
	}

	switch method {
	case identityv1.AuthSignInFullMethod, identityv1.AuthReauthenticateFullMethod:
		if pair, ok := reply.(*identityv1.TokenPair); ok {
			c.tokens.Set(*pair)
		}
	case identityv1.UserCreateFullMethod:
		if resp, ok := reply.(*identityv1.CreateUserResponse); ok {
			c.tokens.Set(resp.Tokens)
		}
	case identityv1.AuthSignOutFullMethod:
		if r, ok := req.(*identityv1.SignOutRequest); ok && r.UserSessionID == c.tokens.Get().UserSessionID {
			c.tokens.Clear()
		}
	case identityv1.UserDeleteFullMethod:
		c.tokens.Clear()
	}
}

// sentHeld reports whether the call carried the tokens still held.
func (c *Client) sentHeld(method string, req any, access string) bool {
	held := c.tokens.Get()
	if method == identityv1.AuthReauthenticateFullMethod {
		r, ok := req.(*identityv1.ReauthenticateRequest)
		return ok && r.RefreshToken == held.RefreshToken
	}
	return access == held.AccessToken
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set("authorization", "Bearer "+token)
	return metadata.NewOutgoingContext(ctx, md)
}

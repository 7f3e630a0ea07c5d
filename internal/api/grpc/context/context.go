package context

import (
	"context"
	"net"

	"google.golang.org/grpc/peer"

	"github.com/dtroode/identity-server/internal/model"
)

type userKey struct{}

// Manager stores the authenticated user of a gRPC call in its context.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserToContext returns a context carrying user as the caller.
func (m *Manager) SetUserToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext returns the caller set by SetUserToContext. The second
// result is false for anonymous calls.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey{}).(model.User)
	return user, ok
}

// PeerIP returns the remote IP address of the call, or an empty string
// when the transport does not expose one.
func PeerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

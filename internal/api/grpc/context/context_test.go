package context

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/peer"

	"github.com/dtroode/identity-server/internal/model"
)

func TestManager_User(t *testing.T) {
	m := NewManager()

	_, ok := m.GetUserFromContext(context.Background())
	assert.False(t, ok)

	user := model.User{ID: uuid.New(), Name: "Jane"}
	ctx := m.SetUserToContext(context.Background(), user)

	got, ok := m.GetUserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestPeerIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "no peer", ctx: context.Background(), want: ""},
		{
			name: "tcp v4",
			ctx:  peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 443}}),
			want: "203.0.113.7",
		},
		{
			name: "tcp v6",
			ctx:  peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("2001:db8::1"), Port: 443}}),
			want: "2001:db8::1",
		},
		{
			name: "no port",
			ctx:  peer.NewContext(context.Background(), &peer.Peer{Addr: &net.UnixAddr{Name: "bufconn", Net: "unix"}}),
			want: "bufconn",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PeerIP(tt.ctx))
		})
	}
}

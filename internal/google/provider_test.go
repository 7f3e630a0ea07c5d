package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/model"
)

type fakeValidator struct {
	payload  *idtoken.Payload
	err      error
	audience string
}

func (f *fakeValidator) Validate(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
	f.audience = audience
	return f.payload, f.err
}

func TestNew_Unconfigured(t *testing.T) {
	p, err := New(context.Background(), config.Google{})
	require.NoError(t, err)

	_, err = p.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, model.ErrIdentityProviderUnsupported)
}

func TestProvider_Verify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload *idtoken.Payload
		err     error
		want    model.ExternalIdentity
		wantErr error
	}{
		{
			name: "verified email",
			payload: &idtoken.Payload{Subject: "1234", Claims: map[string]interface{}{
				"email": "jane@gmail.com", "email_verified": true, "name": "Jane",
			}},
			want: model.ExternalIdentity{UserID: "1234", Email: "jane@gmail.com", Name: "Jane"},
		},
		{
			name: "unverified email",
			payload: &idtoken.Payload{Subject: "1234", Claims: map[string]interface{}{
				"email": "jane@gmail.com", "email_verified": false,
			}},
			wantErr: model.ErrIdentityTokenInvalid,
		},
		{
			name:    "no email",
			payload: &idtoken.Payload{Subject: "1234", Claims: map[string]interface{}{"name": "Jane"}},
			wantErr: model.ErrIdentityTokenInvalid,
		},
		{name: "rejected", err: errors.New("idtoken: token expired"), wantErr: model.ErrIdentityTokenInvalid},
		{name: "no subject", payload: &idtoken.Payload{}, wantErr: model.ErrIdentityTokenInvalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := &fakeValidator{payload: tt.payload, err: tt.err}
			p := &Provider{clientID: "client.apps.googleusercontent.com", validator: v}

			got, err := p.Verify(context.Background(), "token")
			assert.Equal(t, "client.apps.googleusercontent.com", v.audience)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

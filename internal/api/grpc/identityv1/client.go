package identityv1

import (
	"context"

	"google.golang.org/grpc"
)

// AuthClient calls identity.v1.Auth.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	out := new(TokenPair)
	if err := invoke(ctx, c.cc, AuthSignInFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) Reauthenticate(ctx context.Context, in *ReauthenticateRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	out := new(TokenPair)
	if err := invoke(ctx, c.cc, AuthReauthenticateFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := invoke(ctx, c.cc, AuthSignOutFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// VerificationClient calls identity.v1.Verification.
type VerificationClient struct {
	cc grpc.ClientConnInterface
}

func NewVerificationClient(cc grpc.ClientConnInterface) *VerificationClient {
	return &VerificationClient{cc: cc}
}

func (c *VerificationClient) Begin(ctx context.Context, in *BeginVerificationRequest, opts ...grpc.CallOption) (*BeginVerificationResponse, error) {
	out := new(BeginVerificationResponse)
	if err := invoke(ctx, c.cc, VerificationBeginFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VerificationClient) Complete(ctx context.Context, in *CompleteVerificationRequest, opts ...grpc.CallOption) (*CompleteVerificationResponse, error) {
	out := new(CompleteVerificationResponse)
	if err := invoke(ctx, c.cc, VerificationCompleteFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// UserClient calls identity.v1.User.
type UserClient struct {
	cc grpc.ClientConnInterface
}

func NewUserClient(cc grpc.ClientConnInterface) *UserClient {
	return &UserClient{cc: cc}
}

func (c *UserClient) Create(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	out := new(CreateUserResponse)
	if err := invoke(ctx, c.cc, UserCreateFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) Fetch(ctx context.Context, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := invoke(ctx, c.cc, UserFetchFullMethod, &Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) Update(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*User, error) {
	return c.user(ctx, UserUpdateFullMethod, in, opts)
}

func (c *UserClient) UpdateEmail(ctx context.Context, in *UpdateContactRequest, opts ...grpc.CallOption) (*User, error) {
	return c.user(ctx, UserUpdateEmailFullMethod, in, opts)
}

func (c *UserClient) UpdatePhone(ctx context.Context, in *UpdateContactRequest, opts ...grpc.CallOption) (*User, error) {
	return c.user(ctx, UserUpdatePhoneFullMethod, in, opts)
}

func (c *UserClient) ConnectGoogle(ctx context.Context, in *ConnectGoogleRequest, opts ...grpc.CallOption) (*User, error) {
	return c.user(ctx, UserConnectGoogleFullMethod, in, opts)
}

func (c *UserClient) Delete(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) error {
	return invoke(ctx, c.cc, UserDeleteFullMethod, in, new(Empty), opts)
}

func (c *UserClient) LoadPreference(ctx context.Context, in *LoadPreferenceRequest, opts ...grpc.CallOption) (*Preference, error) {
	out := new(Preference)
	if err := invoke(ctx, c.cc, UserLoadPreferenceFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) SetPreference(ctx context.Context, in *Preference, opts ...grpc.CallOption) (*Preference, error) {
	out := new(Preference)
	if err := invoke(ctx, c.cc, UserSetPreferenceFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) SetAvatar(ctx context.Context, in *SetAvatarRequest, opts ...grpc.CallOption) (*Avatar, error) {
	out := new(Avatar)
	if err := invoke(ctx, c.cc, UserSetAvatarFullMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) GetAvatar(ctx context.Context, opts ...grpc.CallOption) (*Avatar, error) {
	out := new(Avatar)
	if err := invoke(ctx, c.cc, UserGetAvatarFullMethod, &Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserClient) user(ctx context.Context, method string, in any, opts []grpc.CallOption) (*User, error) {
	out := new(User)
	if err := invoke(ctx, c.cc, method, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

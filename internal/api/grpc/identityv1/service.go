package identityv1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dtroode/identity-server/internal/api/grpc/codec"
)

const (
	AuthServiceName         = "identity.v1.Auth"
	VerificationServiceName = "identity.v1.Verification"
	UserServiceName         = "identity.v1.User"
)

const (
	AuthSignInFullMethod         = "/identity.v1.Auth/SignIn"
	AuthReauthenticateFullMethod = "/identity.v1.Auth/Reauthenticate"
	AuthSignOutFullMethod        = "/identity.v1.Auth/SignOut"

	VerificationBeginFullMethod    = "/identity.v1.Verification/Begin"
	VerificationCompleteFullMethod = "/identity.v1.Verification/Complete"

	UserCreateFullMethod         = "/identity.v1.User/Create"
	UserFetchFullMethod          = "/identity.v1.User/Fetch"
	UserUpdateFullMethod         = "/identity.v1.User/Update"
	UserUpdateEmailFullMethod    = "/identity.v1.User/UpdateEmail"
	UserUpdatePhoneFullMethod    = "/identity.v1.User/UpdatePhone"
	UserConnectGoogleFullMethod  = "/identity.v1.User/ConnectGoogle"
	UserDeleteFullMethod         = "/identity.v1.User/Delete"
	UserLoadPreferenceFullMethod = "/identity.v1.User/LoadPreference"
	UserSetPreferenceFullMethod  = "/identity.v1.User/SetPreference"
	UserSetAvatarFullMethod      = "/identity.v1.User/SetAvatar"
	UserGetAvatarFullMethod      = "/identity.v1.User/GetAvatar"
)

// AuthServer is the server API for identity.v1.Auth.
type AuthServer interface {
	SignIn(context.Context, *SignInRequest) (*TokenPair, error)
	Reauthenticate(context.Context, *ReauthenticateRequest) (*TokenPair, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
}

// VerificationServer is the server API for identity.v1.Verification.
type VerificationServer interface {
	Begin(context.Context, *BeginVerificationRequest) (*BeginVerificationResponse, error)
	Complete(context.Context, *CompleteVerificationRequest) (*CompleteVerificationResponse, error)
}

// UserServer is the server API for identity.v1.User.
type UserServer interface {
	Create(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	Fetch(context.Context, *Empty) (*User, error)
	Update(context.Context, *UpdateUserRequest) (*User, error)
	UpdateEmail(context.Context, *UpdateContactRequest) (*User, error)
	UpdatePhone(context.Context, *UpdateContactRequest) (*User, error)
	ConnectGoogle(context.Context, *ConnectGoogleRequest) (*User, error)
	Delete(context.Context, *DeleteUserRequest) (*Empty, error)
	LoadPreference(context.Context, *LoadPreferenceRequest) (*Preference, error)
	SetPreference(context.Context, *Preference) (*Preference, error)
	SetAvatar(context.Context, *SetAvatarRequest) (*Avatar, error)
	GetAvatar(context.Context, *Empty) (*Avatar, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignIn", AuthSignInFullMethod, AuthServer.SignIn),
		unary("Reauthenticate", AuthReauthenticateFullMethod, AuthServer.Reauthenticate),
		unary("SignOut", AuthSignOutFullMethod, AuthServer.SignOut),
	},
}

var VerificationServiceDesc = grpc.ServiceDesc{
	ServiceName: VerificationServiceName,
	HandlerType: (*VerificationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Begin", VerificationBeginFullMethod, VerificationServer.Begin),
		unary("Complete", VerificationCompleteFullMethod, VerificationServer.Complete),
	},
}

var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: UserServiceName,
	HandlerType: (*UserServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Create", UserCreateFullMethod, UserServer.Create),
		unary("Fetch", UserFetchFullMethod, UserServer.Fetch),
		unary("Update", UserUpdateFullMethod, UserServer.Update),
		unary("UpdateEmail", UserUpdateEmailFullMethod, UserServer.UpdateEmail),
		unary("UpdatePhone", UserUpdatePhoneFullMethod, UserServer.UpdatePhone),
		unary("ConnectGoogle", UserConnectGoogleFullMethod, UserServer.ConnectGoogle),
		unary("Delete", UserDeleteFullMethod, UserServer.Delete),
		unary("LoadPreference", UserLoadPreferenceFullMethod, UserServer.LoadPreference),
		unary("SetPreference", UserSetPreferenceFullMethod, UserServer.SetPreference),
		unary("SetAvatar", UserSetAvatarFullMethod, UserServer.SetAvatar),
		unary("GetAvatar", UserGetAvatarFullMethod, UserServer.GetAvatar),
	},
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterVerificationServer(s grpc.ServiceRegistrar, srv VerificationServer) {
	s.RegisterService(&VerificationServiceDesc, srv)
}

func RegisterUserServer(s grpc.ServiceRegistrar, srv UserServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

// unary builds a method descriptor that decodes Req and dispatches to call
// on the registered server of type S.
func unary[S any, Req any, Resp any](name, fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	return cc.Invoke(ctx, method, in, out, opts...)
}

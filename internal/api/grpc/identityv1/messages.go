// Package identityv1 describes the identity.v1 gRPC services. Messages are
// exchanged as JSON through the codec package.
package identityv1

import "time"

// Empty is used by methods without a meaningful request or response.
type Empty struct{}

// TokenPair is returned whenever a session starts or rotates.
type TokenPair struct {
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	UserSessionID string `json:"userSessionId"`
	DeviceID      string `json:"deviceId"`
}

type SignInRequest struct {
	GoogleIDToken string `json:"googleIdToken,omitempty"`
	EmailOrPhone  string `json:"emailOrPhone,omitempty"`
	Token         string `json:"token,omitempty"`
	LocalTZOffset *int   `json:"localTzOffset,omitempty"`
	DeviceID      string `json:"deviceId,omitempty"`
}

type ReauthenticateRequest struct {
	RefreshToken  string `json:"refreshToken"`
	LocalTZOffset *int   `json:"localTzOffset,omitempty"`
}

type SignOutRequest struct {
	UserSessionID string `json:"userSessionId"`
}

type BeginVerificationRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Type         string `json:"type"`
}

type BeginVerificationResponse struct {
	AccessVerificationID string    `json:"accessVerificationId"`
	ExpiresAt            time.Time `json:"expiresAt"`
	ResendableAt         time.Time `json:"resendableAt"`
}

type CompleteVerificationRequest struct {
	AccessVerificationID string `json:"accessVerificationId"`
	Code                 string `json:"code"`
}

type CompleteVerificationResponse struct {
	Token string `json:"token"`
}

// User is the public view of an identity.
type User struct {
	UserID          string    `json:"userId"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Name            string    `json:"name"`
	GoogleConnected bool      `json:"googleConnected"`
	LocalTZOffset   int       `json:"localTzOffset"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CreateUserRequest struct {
	GoogleIDToken string `json:"googleIdToken,omitempty"`
	EmailOrPhone  string `json:"emailOrPhone,omitempty"`
	Token         string `json:"token,omitempty"`
	Name          string `json:"name,omitempty"`
	LocalTZOffset int    `json:"localTzOffset"`
	DeviceID      string `json:"deviceId,omitempty"`
}

type CreateUserResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type UpdateUserRequest struct {
	Name          *string `json:"name,omitempty"`
	LocalTZOffset *int    `json:"localTzOffset,omitempty"`
}

// UpdateContactRequest changes the caller's email or phone, depending on
// the method it is sent to.
type UpdateContactRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Token        string `json:"token"`
}

type ConnectGoogleRequest struct {
	GoogleIDToken string `json:"googleIdToken"`
}

type DeleteUserRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Token        string `json:"token"`
}

type LoadPreferenceRequest struct {
	Name string `json:"name"`
}

type Preference struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type SetAvatarRequest struct {
	Data []byte `json:"data"`
}

type Avatar struct {
	Data        []byte `json:"data,omitempty"`
	ContentType string `json:"contentType"`
}

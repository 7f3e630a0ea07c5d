package mocks

import (
	mock "github.com/stretchr/testify/mock"

	uuid "github.com/google/uuid"
)

// TokenManager is a mock type for the model.TokenManager type
type TokenManager struct {
	mock.Mock
}

func (_m *TokenManager) generate(method string, id uuid.UUID) (string, error) {
	ret := _m.MethodCalled(method, id)

	if len(ret) == 0 {
		panic("no return value specified for " + method)
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(uuid.UUID) (string, error)); ok {
		return rf(id)
	}
	r0 = ret.Get(0).(string)
	r1 = ret.Error(1)

	return r0, r1
}

func (_m *TokenManager) parse(method string, token string) (uuid.UUID, error) {
	ret := _m.MethodCalled(method, token)

	if len(ret) == 0 {
		panic("no return value specified for " + method)
	}

	var r0 uuid.UUID
	var r1 error
	if rf, ok := ret.Get(0).(func(string) (uuid.UUID, error)); ok {
		return rf(token)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(uuid.UUID)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// GenerateAccessToken provides a mock function with given fields: userID
func (_m *TokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return _m.generate("GenerateAccessToken", userID)
}

// GenerateRefreshToken provides a mock function with given fields: userSessionID
func (_m *TokenManager) GenerateRefreshToken(userSessionID uuid.UUID) (string, error) {
	return _m.generate("GenerateRefreshToken", userSessionID)
}

// ParseAccessToken provides a mock function with given fields: token
func (_m *TokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	return _m.parse("ParseAccessToken", token)
}

// ParseRefreshToken provides a mock function with given fields: token
func (_m *TokenManager) ParseRefreshToken(token string) (uuid.UUID, error) {
	return _m.parse("ParseRefreshToken", token)
}

// NewTokenManager creates a new instance of TokenManager. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewTokenManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenManager {
	mock := &TokenManager{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

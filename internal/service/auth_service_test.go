package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dispatcherUser(t *testing.T, active bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	return &model.User{
		ID:           3,
		Name:         "Dispatcher",
		Login:        "disp",
		Email:        "disp@frotataxi.com",
		PasswordHash: hash,
		RoleID:       2,
		Active:       active,
		Role: &model.Role{ID: 2, Name: "Dispatcher", Grants: []model.RoleGrant{
			{ResourceName: "Rides", CanView: true, CanEdit: true},
			{ResourceName: "Clients", CanView: true},
		}},
	}
}

func newAuthFixture() (AuthService, *MockUserRepository) {
	users := new(MockUserRepository)
	issuer := auth.NewIssuer([]byte("test-secret"), 8*time.Hour, 30*24*time.Hour)
	return NewAuthService(users, issuer), users
}

func TestLogin_IssuesGrantsOfRole(t *testing.T) {
	svc, users := newAuthFixture()
	users.On("GetByLogin", mock.Anything, "disp").Return(dispatcherUser(t, true), nil).Once()

	res, err := svc.Login(context.Background(), LoginRequest{Login: "disp", Password: "secret123", ReturnURL: "/rides?page=2"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "/rides?page=2", res.RedirectTo)
	assert.Equal(t, []string{"Clients:View", "Rides:Edit", "Rides:View"}, res.Credential.Grants.Tokens())
	assert.False(t, res.Credential.Has(auth.ResourceClients, auth.ActionEdit))
	assert.False(t, res.Credential.Remember)
}

func TestLogin_RememberMeExtendsLifetime(t *testing.T) {
	svc, users := newAuthFixture()
	users.On("GetByLogin", mock.Anything, "disp").Return(dispatcherUser(t, true), nil).Once()

	res, err := svc.Login(context.Background(), LoginRequest{Login: "disp", Password: "secret123", RememberMe: true, ReturnURL: "https://evil.example"})

	require.NoError(t, err)
	assert.True(t, res.Credential.Remember)
	assert.Equal(t, 30*24*time.Hour, res.Credential.ExpiresAt.Sub(res.Credential.IssuedAt))
	assert.Equal(t, auth.DefaultLanding, res.RedirectTo)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		findErr  error
		password string
	}{
		{name: "unknown login", findErr: apperr.NotFound("user"), password: "secret123"},
		{name: "wrong password", user: dispatcherUser(t, true), password: "nope"},
		{name: "inactive user", user: dispatcherUser(t, false), password: "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newAuthFixture()
			if tt.user != nil {
				users.On("GetByLogin", mock.Anything, "disp").Return(tt.user, nil).Once()
			} else {
				users.On("GetByLogin", mock.Anything, "disp").Return(nil, tt.findErr).Once()
			}

			res, err := svc.Login(context.Background(), LoginRequest{Login: "disp", Password: tt.password})

			assert.Nil(t, res)
			assert.True(t, errors.Is(err, apperr.ErrAuthFailure))
		})
	}
}

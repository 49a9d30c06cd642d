package service

import (
	"context"
	"errors"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/logging"
	"frota/internal/repository"

	"go.uber.org/zap"
)

type LoginRequest struct {
	Login      string `json:"login" form:"login" binding:"required"`
	Password   string `json:"password" form:"password" binding:"required"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
	ReturnURL  string `json:"return_url" form:"returnUrl"`
}

// LoginResult carries the issued session and where the browser should go next.
type LoginResult struct {
	Credential *auth.SessionCredential
	Token      string
	RedirectTo string
}

// SessionResponse is the public view of a session.
type SessionResponse struct {
	UserID    uint     `json:"user_id"`
	Name      string   `json:"name"`
	Login     string   `json:"login"`
	Email     string   `json:"email"`
	RoleID    uint     `json:"role_id"`
	RoleName  string   `json:"role_name"`
	Grants    []string `json:"grants"`
	Remember  bool     `json:"remember_me"`
	ExpiresAt string   `json:"expires_at"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type authService struct {
	users  repository.UserRepository
	issuer *auth.Issuer
}

func NewAuthService(users repository.UserRepository, issuer *auth.Issuer) AuthService {
	return &authService{users: users, issuer: issuer}
}

// Login checks the credentials and issues a session carrying the role's grants.
// Unknown login, wrong password and inactive account all yield ErrAuthFailure.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			logging.Warn("login rejected", zap.String("login", req.Login), zap.String("reason", "unknown login"))
			return nil, apperr.ErrAuthFailure
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Warn("login rejected", zap.String("login", req.Login), zap.String("reason", "bad password"))
		return nil, apperr.ErrAuthFailure
	}
	if !user.Active {
		logging.Warn("login rejected", zap.String("login", req.Login), zap.String("reason", "inactive"))
		return nil, apperr.ErrAuthFailure
	}

	identity := auth.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Login:  user.Login,
		Email:  user.Email,
		RoleID: user.RoleID,
	}
	var grants auth.GrantSet
	if user.Role != nil {
		identity.RoleName = user.Role.Name
		grants = auth.GrantsFor(user.Role.Grants)
	} else {
		grants = auth.GrantSet{}
	}

	cred, token, err := s.issuer.Issue(identity, grants, req.RememberMe)
	if err != nil {
		return nil, err
	}

	logging.Info("login succeeded", zap.Uint("user_id", user.ID), zap.Bool("remember_me", req.RememberMe))
	return &LoginResult{
		Credential: cred,
		Token:      token,
		RedirectTo: auth.SafeReturnURL(req.ReturnURL),
	}, nil
}

// ToSessionResponse renders a credential for the /auth/me endpoint.
func ToSessionResponse(cred *auth.SessionCredential) SessionResponse {
	return SessionResponse{
		UserID:    cred.UserID,
		Name:      cred.Name,
		Login:     cred.Login,
		Email:     cred.Email,
		RoleID:    cred.RoleID,
		RoleName:  cred.RoleName,
		Grants:    cred.Grants.Tokens(),
		Remember:  cred.Remember,
		ExpiresAt: cred.ExpiresAt.Format(timeLayout),
	}
}

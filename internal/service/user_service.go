package service

import (
	"context"
	"errors"
	"strings"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/model"
	"frota/internal/repository"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Login    string `json:"login" binding:"required,max=20"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	RoleID   uint   `json:"role_id" binding:"required"`
	Active   *bool  `json:"active"`
}

type UpdateUserRequest struct {
	Name   string `json:"name" binding:"required,max=50"`
	Login  string `json:"login" binding:"required,max=20"`
	Email  string `json:"email" binding:"required,email,max=100"`
	RoleID uint   `json:"role_id" binding:"required"`
	Active *bool  `json:"active"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// DTO for returning User without exposing the password hash
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	RoleID    uint   `json:"role_id"`
	RoleName  string `json:"role_name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserService defines the business logic for operator accounts
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, id uint, req ChangePasswordRequest) error
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	roles     repository.RoleRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, roles repository.RoleRepository, audit repository.AuditRepository, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, roles: roles, audit: audit, txManager: txManager}
}

func mapToResponse(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Login:     user.Login,
		Email:     user.Email,
		RoleID:    user.RoleID,
		Active:    user.Active,
		CreatedAt: user.CreatedAt.Format(timeLayout),
		UpdatedAt: user.UpdatedAt.Format(timeLayout),
	}
	if user.Role != nil {
		res.RoleName = user.Role.Name
	}
	return res
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	login := strings.TrimSpace(req.Login)
	email := strings.TrimSpace(req.Email)

	role, err := s.findRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, 0, login, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       req.Active == nil || *req.Active,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionCreateUser, user.ID, user.Login, nil)
	})
	if err != nil {
		return nil, err
	}

	user.Role = role
	return mapToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, search string, page, limit int) ([]UserResponse, int64, error) {
	page, limit = normalizePage(page, limit, 20)

	users, total, err := s.repo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}

	return responses, total, nil
}

// UpdateUser changes profile fields and keeps the current password.
func (s *userService) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.findRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	login := strings.TrimSpace(req.Login)
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUnique(ctx, id, login, email); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Login = login
	user.Email = email
	user.RoleID = role.ID
	user.Role = role
	if req.Active != nil {
		user.Active = *req.Active
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateUser, user.ID, user.Login, nil)
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, id uint, req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return apperr.Validation("password confirmation does not match")
	}
	if len(req.NewPassword) < 6 || len(req.NewPassword) > 100 {
		return apperr.Validation("password must have between 6 and 100 characters")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return errors.New("failed to hash password")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdatePassword(txCtx, id, hash); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionChangePassword, id, user.Login, nil)
	})
}

// DeleteUser refuses to remove the account of the operator making the request.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if actor := auth.ActorID(ctx); actor != nil && *actor == id {
		return apperr.Blocked("you cannot delete your own account")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteUser, id, user.Login, nil)
	})
}

func (s *userService) findRole(ctx context.Context, roleID uint) (*model.Role, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("role %d does not exist", roleID)
		}
		return nil, err
	}
	return role, nil
}

func (s *userService) ensureUnique(ctx context.Context, selfID uint, login, email string) error {
	if existing, err := s.repo.GetByLogin(ctx, login); err == nil && existing.ID != selfID {
		return apperr.Validation("login %q is already in use", login)
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing.ID != selfID {
		return apperr.Validation("email %q is already in use", email)
	} else if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

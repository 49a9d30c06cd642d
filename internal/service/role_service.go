package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/model"
	"frota/internal/repository"
)

// --- DTOs ---

type RoleRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

type GrantPayload struct {
	Resource string `json:"resource" binding:"required"`
	CanView  bool   `json:"can_view"`
	CanEdit  bool   `json:"can_edit"`
}

type UpdateRolePermissionsRequest struct {
	Grants []GrantPayload `json:"grants"`
}

type RoleResponse struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Grants    []string `json:"grants"`
	CreatedAt string   `json:"created_at"`
}

// PermissionRow is one line of the role permission matrix.
type PermissionRow struct {
	Resource string `json:"resource"`
	CanView  bool   `json:"can_view"`
	CanEdit  bool   `json:"can_edit"`
}

type RolePermissionsResponse struct {
	RoleID   uint            `json:"role_id"`
	RoleName string          `json:"role_name"`
	Matrix   []PermissionRow `json:"matrix"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id uint) (*RoleResponse, error)
	CreateRole(ctx context.Context, req RoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id uint, req RoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id uint) error
	GetPermissions(ctx context.Context, id uint) (*RolePermissionsResponse, error)
	UpdatePermissions(ctx context.Context, id uint, req UpdateRolePermissionsRequest) (*RolePermissionsResponse, error)
}

type roleService struct {
	roles     repository.RoleRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

func NewRoleService(roles repository.RoleRepository, audit repository.AuditRepository, txManager repository.TransactionManager) RoleService {
	return &roleService{roles: roles, audit: audit, txManager: txManager}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req RoleRequest) (*RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	role := model.Role{Name: name}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Create(txCtx, &role); err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
		return recordAudit(txCtx, s.audit, model.ActionCreateRole, role.ID, role.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, req RoleRequest) (*RoleResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return nil, err
	}
	previous := role.Name
	role.Name = name

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Update(txCtx, role); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateRole, role.ID, role.Name, map[string]string{"previous_name": previous})
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(*role)
	return &resp, nil
}

// DeleteRole refuses while operators are still assigned to the role.
func (s *roleService) DeleteRole(ctx context.Context, id uint) error {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}

	users, err := s.roles.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return apperr.Blocked("role %q is assigned to %d user(s)", role.Name, users)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteRole, id, role.Name, nil)
	})
}

func (s *roleService) GetPermissions(ctx context.Context, id uint) (*RolePermissionsResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPermissionsResponse(role), nil
}

// UpdatePermissions replaces the role's grants. Rows with neither flag set are not stored.
// Sessions pick the change up at their next login.
func (s *roleService) UpdatePermissions(ctx context.Context, id uint, req UpdateRolePermissionsRequest) (*RolePermissionsResponse, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	byResource := make(map[auth.Resource]model.RoleGrant, len(req.Grants))
	for _, g := range req.Grants {
		resource, ok := auth.ParseResource(g.Resource)
		if !ok {
			return nil, apperr.Validation("unknown resource %q", g.Resource)
		}
		if !g.CanView && !g.CanEdit {
			delete(byResource, resource)
			continue
		}
		byResource[resource] = model.RoleGrant{ResourceName: string(resource), CanView: g.CanView, CanEdit: g.CanEdit}
	}

	grants := make([]model.RoleGrant, 0, len(byResource))
	for _, r := range auth.Resources {
		if g, ok := byResource[r]; ok {
			grants = append(grants, g)
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roles.ReplaceGrants(txCtx, id, grants); err != nil {
			return fmt.Errorf("failed to update permissions: %w", err)
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateRoleGrants, id, role.Name, auth.GrantsFor(grants).Tokens())
	})
	if err != nil {
		return nil, err
	}

	role.Grants = grants
	return toPermissionsResponse(role), nil
}

func (s *roleService) ensureNameFree(ctx context.Context, name string, selfID uint) error {
	if name == "" {
		return apperr.Validation("name is required")
	}
	existing, err := s.roles.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperr.Validation("a role named %q already exists", name)
	}
	return nil
}

// --- Response mappers ---

func toRoleResponse(r model.Role) RoleResponse {
	return RoleResponse{
		ID:        r.ID,
		Name:      r.Name,
		Grants:    auth.GrantsFor(r.Grants).Tokens(),
		CreatedAt: r.CreatedAt.Format(timeLayout),
	}
}

func toPermissionsResponse(role *model.Role) *RolePermissionsResponse {
	stored := make(map[string]model.RoleGrant, len(role.Grants))
	for _, g := range role.Grants {
		stored[g.ResourceName] = g
	}

	matrix := make([]PermissionRow, 0, len(auth.Resources))
	for _, r := range auth.Resources {
		g := stored[string(r)]
		matrix = append(matrix, PermissionRow{Resource: string(r), CanView: g.CanView, CanEdit: g.CanEdit})
	}
	return &RolePermissionsResponse{RoleID: role.ID, RoleName: role.Name, Matrix: matrix}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"frota/internal/apperr"
	"frota/internal/auth"
	"frota/internal/logging"
	"frota/internal/model"
	"frota/internal/repository"

	"go.uber.org/zap"
)

const (
	AdminRoleName = "Administrador"
	adminLogin    = "admin"
	adminEmail    = "admin@frotataxi.com"
	adminPassword = "admin"
)

// SeedDefaults makes sure the administrator role holds every grant and that an
// administrator account exists. It is safe to run on every start.
func SeedDefaults(ctx context.Context, roles repository.RoleRepository, users repository.UserRepository, txManager repository.TransactionManager) error {
	return txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := roles.FindByName(txCtx, AdminRoleName)
		if errors.Is(err, apperr.ErrNotFound) {
			role = &model.Role{Name: AdminRoleName}
			if err := roles.Create(txCtx, role); err != nil {
				return fmt.Errorf("failed to seed role '%s': %w", AdminRoleName, err)
			}
		} else if err != nil {
			return err
		}

		grants := make([]model.RoleGrant, 0, len(auth.Resources))
		for _, res := range auth.Resources {
			grants = append(grants, model.RoleGrant{RoleID: role.ID, ResourceName: string(res), CanView: true, CanEdit: true})
		}
		if err := roles.ReplaceGrants(txCtx, role.ID, grants); err != nil {
			return fmt.Errorf("failed to seed grants: %w", err)
		}

		if _, err := users.GetByLogin(txCtx, adminLogin); err == nil {
			return nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		admin := &model.User{
			Name:         "Administrador",
			Login:        adminLogin,
			Email:        adminEmail,
			PasswordHash: hash,
			RoleID:       role.ID,
			Active:       true,
		}
		if err := users.Create(txCtx, admin); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		logging.Warn("seeded default administrator, change its password", zap.String("login", adminLogin))
		return nil
	})
}

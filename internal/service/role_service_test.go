package service

import (
	"context"
	"errors"
	"testing"

	"frota/internal/apperr"
	"frota/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRoleFixture() (RoleService, *MockRoleRepository, *MockAuditRepository) {
	roles := new(MockRoleRepository)
	audit := new(MockAuditRepository)
	audit.On("Log", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewRoleService(roles, audit, passThroughTx{}), roles, audit
}

func TestDeleteRole_BlockedWhileAssigned(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()
	roles.On("CountUsers", mock.Anything, uint(2)).Return(int64(3), nil).Once()

	err := svc.DeleteRole(context.Background(), 2)

	assert.True(t, errors.Is(err, apperr.ErrReferentialBlock))
	roles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteRole_Unassigned(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()
	roles.On("CountUsers", mock.Anything, uint(2)).Return(int64(0), nil).Once()
	roles.On("Delete", mock.Anything, uint(2)).Return(nil).Once()

	require.NoError(t, svc.DeleteRole(context.Background(), 2))
	roles.AssertExpectations(t)
}

func TestCreateRole_DuplicateName(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByName", mock.Anything, "Dispatcher").Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()

	_, err := svc.CreateRole(context.Background(), RoleRequest{Name: " Dispatcher "})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUpdateRole_SameNameKeepsItself(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()
	roles.On("FindByName", mock.Anything, "Dispatcher").Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()
	roles.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := svc.UpdateRole(context.Background(), 2, RoleRequest{Name: "Dispatcher"})

	require.NoError(t, err)
	assert.Equal(t, "Dispatcher", res.Name)
}

func TestUpdatePermissions_DropsEmptyRowsAndKeepsCatalogOrder(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2, Name: "Dispatcher"}, nil).Once()

	var saved []model.RoleGrant
	roles.On("ReplaceGrants", mock.Anything, uint(2), mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(2).([]model.RoleGrant)
	}).Return(nil).Once()

	res, err := svc.UpdatePermissions(context.Background(), 2, UpdateRolePermissionsRequest{Grants: []GrantPayload{
		{Resource: "Rides", CanView: true, CanEdit: true},
		{Resource: "Users"},
		{Resource: "Clients", CanView: true},
	}})

	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Clients", saved[0].ResourceName)
	assert.Equal(t, "Rides", saved[1].ResourceName)

	for _, row := range res.Matrix {
		switch row.Resource {
		case "Rides":
			assert.True(t, row.CanView && row.CanEdit)
		case "Clients":
			assert.True(t, row.CanView)
			assert.False(t, row.CanEdit)
		default:
			assert.False(t, row.CanView || row.CanEdit, row.Resource)
		}
	}
}

func TestUpdatePermissions_UnknownResource(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2}, nil).Once()

	_, err := svc.UpdatePermissions(context.Background(), 2, UpdateRolePermissionsRequest{Grants: []GrantPayload{{Resource: "Invoices", CanView: true}}})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	roles.AssertNotCalled(t, "ReplaceGrants", mock.Anything, mock.Anything, mock.Anything)
}

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

type clientFixture struct {
	svc     ClientService
	clients *MockClientRepository
	rides   *MockRideRepository
	routes  *MockRouteRepository
	audit   *MockAuditRepository
}

func newClientFixture() *clientFixture {
	f := &clientFixture{
		clients: new(MockClientRepository),
		rides:   new(MockRideRepository),
		routes:  new(MockRouteRepository),
		audit:   new(MockAuditRepository),
	}
	f.svc = NewClientService(f.clients, f.rides, f.routes, f.audit, passThroughTx{})
	f.audit.On("Log", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func storedClient() *model.Client {
	return &model.Client{ID: 1, Name: "Acme", Status: model.StatusActive, Version: 2}
}

func TestUpdateClient_ReconcilesChildren(t *testing.T) {
	f := newClientFixture()
	f.clients.On("FindByID", mock.Anything, uint(1)).Return(storedClient(), nil)
	f.clients.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Client) bool {
		return c.Name == "Acme Ltda" && c.Version == 2
	})).Return(nil).Once()

	f.clients.On("ListCostCenters", mock.Anything, uint(1)).Return([]model.CostCenter{
		{ID: 1, ClientID: 1, Code: "001", Description: "Diretoria"},
		{ID: 2, ClientID: 1, Code: "002", Description: "Comercial"},
	}, nil).Once()
	f.rides.On("ReferencesCostCenter", mock.Anything, uint(2)).Return(true, nil).Once()
	f.clients.On("CreateCostCenter", mock.Anything, mock.MatchedBy(func(cc *model.CostCenter) bool {
		return cc.ClientID == 1 && cc.Code == "003" && cc.Description == "Novo"
	})).Return(nil).Once()

	f.clients.On("ListAuthorizedUsers", mock.Anything, uint(1)).Return([]model.AuthorizedUser{
		{ID: 5, ClientID: 1, Name: "Old", RequesterType: model.RequesterTypeBoth, Status: model.StatusActive, Phone1: "1", Email: "old@acme.com"},
	}, nil).Once()
	f.rides.On("ReferencesAuthorizedUser", mock.Anything, uint(5)).Return(false, nil).Once()
	f.clients.On("DeleteAuthorizedUser", mock.Anything, uint(5)).Return(nil).Once()

	res, err := f.svc.UpdateClient(context.Background(), 1, ClientRequest{
		Name:    "Acme Ltda",
		Status:  "Ativo",
		Version: 2,
		CostCenters: []CostCenterPayload{
			{ID: 1, Code: "001", Description: "Diretoria"},
			{Code: "", Description: "missing code"},
			{Code: "003", Description: "Novo"},
		},
	})

	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, collectionCostCenters, res.Warnings[0].Collection)
	require.NotNil(t, res.Warnings[0].Index)
	assert.Equal(t, 1, *res.Warnings[0].Index)

	f.clients.AssertNotCalled(t, "UpdateCostCenter", mock.Anything, mock.Anything)
	f.clients.AssertNotCalled(t, "DeleteCostCenter", mock.Anything, mock.Anything)
	f.clients.AssertExpectations(t)
	f.rides.AssertExpectations(t)
}

func TestUpdateClient_ChildWriteFailureIsAWarning(t *testing.T) {
	f := newClientFixture()
	f.clients.On("FindByID", mock.Anything, uint(1)).Return(storedClient(), nil)
	f.clients.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.clients.On("ListCostCenters", mock.Anything, uint(1)).Return([]model.CostCenter{}, nil).Once()
	f.clients.On("CreateCostCenter", mock.Anything, mock.Anything).Return(errors.New("duplicate key")).Once()
	f.clients.On("ListAuthorizedUsers", mock.Anything, uint(1)).Return([]model.AuthorizedUser{}, nil).Once()

	res, err := f.svc.UpdateClient(context.Background(), 1, ClientRequest{
		Name:        "Acme",
		Version:     2,
		CostCenters: []CostCenterPayload{{Code: "001", Description: "Diretoria"}},
	})

	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "insert failed", res.Warnings[0].Reason)
	assert.Nil(t, res.Warnings[0].Index)
}

func TestUpdateClient_VersionConflict(t *testing.T) {
	f := newClientFixture()
	f.clients.On("FindByID", mock.Anything, uint(1)).Return(storedClient(), nil).Once()
	f.clients.On("Update", mock.Anything, mock.Anything).Return(apperr.ErrConcurrencyConflict).Once()

	_, err := f.svc.UpdateClient(context.Background(), 1, ClientRequest{Name: "Acme", Version: 1})

	assert.True(t, errors.Is(err, apperr.ErrConcurrencyConflict))
	f.clients.AssertNotCalled(t, "ListCostCenters", mock.Anything, mock.Anything)
}

func TestUpdateClient_VersionRequired(t *testing.T) {
	f := newClientFixture()

	_, err := f.svc.UpdateClient(context.Background(), 1, ClientRequest{Name: "Acme"})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	f.clients.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreateClient_InsertsValidChildren(t *testing.T) {
	f := newClientFixture()
	f.clients.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Client) bool {
		return c.Status == model.StatusActive && c.State == "SP"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Client).ID = 9
	}).Return(nil).Once()
	f.clients.On("ListCostCenters", mock.Anything, uint(9)).Return([]model.CostCenter{}, nil).Once()
	f.clients.On("ListAuthorizedUsers", mock.Anything, uint(9)).Return([]model.AuthorizedUser{}, nil).Once()
	f.clients.On("CreateAuthorizedUser", mock.Anything, mock.MatchedBy(func(u *model.AuthorizedUser) bool {
		return u.ClientID == 9 && u.RequesterType == model.RequesterTypeBoth && u.Status == model.StatusActive
	})).Return(nil).Once()
	f.clients.On("FindByID", mock.Anything, uint(9)).Return(&model.Client{ID: 9, Name: "Novo"}, nil).Once()

	res, err := f.svc.CreateClient(context.Background(), ClientRequest{
		Name:  "Novo",
		State: "sp",
		AuthorizedUsers: []AuthorizedUserPayload{{
			Name: "Maria", RequesterType: "Ambos", Status: "1", Phone1: "11 99999-0000", Email: "maria@novo.com",
		}},
	})

	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, uint(9), res.ID)
	f.clients.AssertExpectations(t)
}

func TestCreateClient_UnknownStatus(t *testing.T) {
	f := newClientFixture()

	_, err := f.svc.CreateClient(context.Background(), ClientRequest{Name: "X", Status: "Paused"})

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	f.clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteClient_BlockedByRides(t *testing.T) {
	f := newClientFixture()
	f.clients.On("FindByID", mock.Anything, uint(1)).Return(storedClient(), nil).Once()
	f.rides.On("ReferencesClient", mock.Anything, uint(1)).Return(true, nil).Once()

	err := f.svc.DeleteClient(context.Background(), 1)

	assert.True(t, errors.Is(err, apperr.ErrReferentialBlock))
	f.clients.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteClient_Removes(t *testing.T) {
	f := newClientFixture()
	f.clients.On("FindByID", mock.Anything, uint(1)).Return(storedClient(), nil).Once()
	f.rides.On("ReferencesClient", mock.Anything, uint(1)).Return(false, nil).Once()
	f.clients.On("Delete", mock.Anything, uint(1)).Return(nil).Once()

	require.NoError(t, f.svc.DeleteClient(context.Background(), 1))
	f.audit.AssertCalled(t, "Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionDeleteClient && e.EntityID == "1"
	}))
}

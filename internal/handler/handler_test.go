package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frota/internal/auth"
	"frota/internal/middleware"
	"frota/internal/model"
	"frota/internal/service"
	"frota/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testIssuer = auth.NewIssuer([]byte("handler-secret"), 8*time.Hour, 30*24*time.Hour)

func testGate() *middleware.Gate {
	return middleware.NewGate(testIssuer, middleware.CookieSettings{Name: "sess"})
}

func bearer(t *testing.T, grants ...string) string {
	t.Helper()
	_, token, err := testIssuer.Issue(auth.Identity{UserID: 7, Name: "Ana", Login: "ana"}, auth.NewGrantSet(grants), false)
	require.NoError(t, err)
	return "Bearer " + token
}

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func newRouter(h routeRegistrar) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup)
	return r
}

func do(r http.Handler, method, target, authz, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

type MockRideService struct {
	mock.Mock
}

func (m *MockRideService) ListRides(ctx context.Context, filter service.RideListFilter) ([]service.RideResponse, int64, error) {
	args := m.Called(ctx, filter)
	rides, _ := args.Get(0).([]service.RideResponse)
	return rides, args.Get(1).(int64), args.Error(2)
}

func (m *MockRideService) GetRide(ctx context.Context, id uint) (*service.RideResponse, error) {
	args := m.Called(ctx, id)
	ride, _ := args.Get(0).(*service.RideResponse)
	return ride, args.Error(1)
}

func (m *MockRideService) CreateRide(ctx context.Context, req service.SaveRideRequest) (*service.RideResponse, error) {
	args := m.Called(ctx, req)
	ride, _ := args.Get(0).(*service.RideResponse)
	return ride, args.Error(1)
}

func (m *MockRideService) UpdateRide(ctx context.Context, id uint, req service.SaveRideRequest) (*service.RideResponse, error) {
	args := m.Called(ctx, id, req)
	ride, _ := args.Get(0).(*service.RideResponse)
	return ride, args.Error(1)
}

func (m *MockRideService) MarkCompleted(ctx context.Context, id uint) (*service.RideResponse, error) {
	args := m.Called(ctx, id)
	ride, _ := args.Get(0).(*service.RideResponse)
	return ride, args.Error(1)
}

func (m *MockRideService) DeleteRide(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) ListClients(ctx context.Context, filter service.ClientListFilter) ([]model.Client, int64, error) {
	args := m.Called(ctx, filter)
	clients, _ := args.Get(0).([]model.Client)
	return clients, args.Get(1).(int64), args.Error(2)
}

func (m *MockClientService) GetClient(ctx context.Context, id uint) (*model.Client, error) {
	args := m.Called(ctx, id)
	client, _ := args.Get(0).(*model.Client)
	return client, args.Error(1)
}

func (m *MockClientService) CreateClient(ctx context.Context, req service.ClientRequest) (*service.ClientResponse, error) {
	args := m.Called(ctx, req)
	client, _ := args.Get(0).(*service.ClientResponse)
	return client, args.Error(1)
}

func (m *MockClientService) UpdateClient(ctx context.Context, id uint, req service.ClientRequest) (*service.ClientResponse, error) {
	args := m.Called(ctx, id, req)
	client, _ := args.Get(0).(*service.ClientResponse)
	return client, args.Error(1)
}

func (m *MockClientService) DeleteClient(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClientService) Requesters(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	args := m.Called(ctx, clientID)
	users, _ := args.Get(0).([]model.AuthorizedUser)
	return users, args.Error(1)
}

func (m *MockClientService) Riders(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	args := m.Called(ctx, clientID)
	users, _ := args.Get(0).([]model.AuthorizedUser)
	return users, args.Error(1)
}

func (m *MockClientService) CostCenters(ctx context.Context, clientID uint) ([]model.CostCenter, error) {
	args := m.Called(ctx, clientID)
	centers, _ := args.Get(0).([]model.CostCenter)
	return centers, args.Error(1)
}

func (m *MockClientService) ActiveRoutes(ctx context.Context, clientID uint) ([]model.Route, error) {
	args := m.Called(ctx, clientID)
	routes, _ := args.Get(0).([]model.Route)
	return routes, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*service.LoginResult)
	return res, args.Error(1)
}

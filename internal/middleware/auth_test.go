package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frota/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gateEpoch = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func testIssuer(at time.Time) *auth.Issuer {
	return auth.NewIssuer([]byte("gate-secret"), 8*time.Hour, 30*24*time.Hour).
		WithClock(func() time.Time { return at })
}

func dispatcherToken(t *testing.T, at time.Time, remember bool) string {
	t.Helper()
	grants := auth.NewGrantSet([]string{"Rides:View", "Rides:Edit", "Clients:View"})
	_, token, err := testIssuer(at).Issue(auth.Identity{UserID: 3, Name: "Dispatcher", Login: "disp"}, grants, remember)
	require.NoError(t, err)
	return token
}

func newGatedRouter(gate *Gate) *gin.Engine {
	r := gin.New()
	ok := func(c *gin.Context) {
		cred, found := auth.FromContext(c.Request.Context())
		if !found {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, cred.Login)
	}
	r.GET("/clients", gate.RequirePermission(auth.ResourceClients), ok)
	r.PUT("/clients/:id", gate.RequirePermission(auth.ResourceClients, auth.ActionEdit), ok)
	r.GET("/rides", gate.RequirePermission(auth.ResourceRides, auth.ActionView), ok)
	r.GET("/me", gate.RequireSession(), ok)
	return r
}

func TestGate_NoCredentialRedirectsToLoginWithReturnURL(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients?page=2", nil)

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login?returnUrl=%2Fclients%3Fpage%3D2", w.Header().Get("Location"))
}

func TestGate_InvalidTokenRedirectsToLogin(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: "not-a-token"})

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), LoginPath))
}

func TestGate_MissingGrantRedirectsToAccessDenied(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/clients/1", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: dispatcherToken(t, gateEpoch, false)})

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, AccessDeniedPath, w.Header().Get("Location"))
}

func TestGate_GrantedRequestReachesHandler(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: dispatcherToken(t, gateEpoch, false)})

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disp", w.Body.String())
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestGate_BearerHeader(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rides", nil)
	req.Header.Set("Authorization", "Bearer "+dispatcherToken(t, gateEpoch, false))

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGate_RenewsPastHalfLifetime(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch.Add(5*time.Hour)), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rides", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: dispatcherToken(t, gateEpoch, false)})

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sess=")
}

func TestGate_ExpiredSessionRedirects(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch.Add(9*time.Hour)), CookieSettings{Name: "sess"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rides", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: dispatcherToken(t, gateEpoch, false)})

	newGatedRouter(gate).ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), LoginPath))
}

func TestGate_Check(t *testing.T) {
	gate := NewGate(testIssuer(gateEpoch), CookieSettings{})
	cred := &auth.SessionCredential{Grants: auth.NewGrantSet([]string{"Reports:View", "Units:Edit"})}

	assert.Equal(t, RedirectLogin, gate.Check(nil, auth.ResourceReports))
	assert.Equal(t, Allow, gate.Check(cred, auth.ResourceReports))
	assert.Equal(t, RedirectAccessDenied, gate.Check(cred, auth.ResourceReports, auth.ActionEdit))
	// Edit does not imply View.
	assert.Equal(t, RedirectAccessDenied, gate.Check(cred, auth.ResourceUnits))
	assert.Equal(t, Allow, gate.Check(cred, auth.ResourceUnits, auth.ActionEdit))
	assert.Equal(t, RedirectAccessDenied, gate.Check(cred, auth.ResourceRoles))
}

func TestSetSessionCookie_PersistentOnlyWhenRemembered(t *testing.T) {
	gate := NewGate(testIssuer(time.Now()), CookieSettings{Name: "sess"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	gate.SetSessionCookie(c, &auth.SessionCredential{Remember: false, ExpiresAt: time.Now().Add(8 * time.Hour)}, "tok")
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "HttpOnly")
	assert.NotContains(t, cookie, "Max-Age")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	gate.SetSessionCookie(c, &auth.SessionCredential{Remember: true, ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}, "tok")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=")
}

package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"frota/internal/auth"
	"frota/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	LoginPath        = "/auth/login"
	AccessDeniedPath = "/auth/access-denied"

	credentialKey = "session"
)

// Decision is the outcome of checking a credential against a required grant.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectAccessDenied
)

// CookieSettings controls how the session cookie is written.
type CookieSettings struct {
	Name      string
	Secure    bool
	CrossSite bool
}

// Gate guards routes with the grants carried by the session credential.
type Gate struct {
	issuer *auth.Issuer
	cookie CookieSettings
}

func NewGate(issuer *auth.Issuer, cookie CookieSettings) *Gate {
	if cookie.Name == "" {
		cookie.Name = "frota_session"
	}
	return &Gate{issuer: issuer, cookie: cookie}
}

// Check decides what to do with a request holding cred. A nil credential
// means the caller is not logged in.
func (g *Gate) Check(cred *auth.SessionCredential, resource auth.Resource, actions ...auth.Action) Decision {
	if cred == nil {
		return RedirectLogin
	}
	if len(actions) == 0 {
		actions = []auth.Action{auth.ActionView}
	}
	for _, a := range actions {
		if !cred.Has(resource, a) {
			return RedirectAccessDenied
		}
	}
	return Allow
}

// RequirePermission runs before any handler touches data. Without a valid
// session it redirects to the login page carrying the original URL; without
// the grant it redirects to the access denied page.
func (g *Gate) RequirePermission(resource auth.Resource, actions ...auth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := g.authenticate(c)

		switch g.Check(cred, resource, actions...) {
		case RedirectLogin:
			g.redirectToLogin(c)
			return
		case RedirectAccessDenied:
			logging.Warn("access denied",
				zap.Uint("user_id", cred.UserID),
				zap.String("resource", string(resource)),
				zap.String("path", c.Request.URL.Path),
			)
			c.Redirect(http.StatusFound, AccessDeniedPath)
			c.Abort()
			return
		}

		g.attach(c, cred)
		c.Next()
	}
}

// RequireSession only demands a valid login.
func (g *Gate) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := g.authenticate(c)
		if cred == nil {
			g.redirectToLogin(c)
			return
		}
		g.attach(c, cred)
		c.Next()
	}
}

// Authenticate exposes token verification for endpoints outside the router
// middleware chain, such as the websocket upgrade.
func (g *Gate) Authenticate(token string) (*auth.SessionCredential, error) {
	return g.issuer.Parse(token)
}

// SetSessionCookie writes the session cookie. Remember-me sessions survive a
// browser restart; the others die with the browser session.
func (g *Gate) SetSessionCookie(c *gin.Context, cred *auth.SessionCredential, token string) {
	maxAge := 0
	if cred.Remember {
		maxAge = int(time.Until(cred.ExpiresAt).Seconds())
	}
	c.SetSameSite(g.sameSite())
	c.SetCookie(g.cookie.Name, token, maxAge, "/", "", g.secure(), true)
}

// ClearSessionCookie removes the session cookie.
func (g *Gate) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(g.sameSite())
	c.SetCookie(g.cookie.Name, "", -1, "/", "", g.secure(), true)
}

// CredentialFrom returns the session the gate attached to the request.
func CredentialFrom(c *gin.Context) (*auth.SessionCredential, bool) {
	v, ok := c.Get(credentialKey)
	if !ok {
		return nil, false
	}
	cred, ok := v.(*auth.SessionCredential)
	return cred, ok && cred != nil
}

// authenticate reads the token from the cookie, falling back to a bearer
// header, and renews it once past half its lifetime.
func (g *Gate) authenticate(c *gin.Context) *auth.SessionCredential {
	token := g.TokenFrom(c)
	if token == "" {
		return nil
	}

	cred, err := g.issuer.Parse(token)
	if err != nil {
		logging.Debug("session rejected", zap.Error(err))
		return nil
	}

	if g.issuer.NeedsRenewal(cred) {
		renewed, signed, err := g.issuer.Renew(cred)
		if err != nil {
			logging.Error("session renewal failed", zap.Uint("user_id", cred.UserID), zap.Error(err))
			return cred
		}
		g.SetSessionCookie(c, renewed, signed)
		return renewed
	}
	return cred
}

// TokenFrom extracts the raw session token from the request.
func (g *Gate) TokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(g.cookie.Name); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (g *Gate) attach(c *gin.Context, cred *auth.SessionCredential) {
	c.Set(credentialKey, cred)
	c.Request = c.Request.WithContext(auth.WithCredential(c.Request.Context(), cred))
}

func (g *Gate) redirectToLogin(c *gin.Context) {
	target := LoginPath + "?returnUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func (g *Gate) sameSite() http.SameSite {
	if g.cookie.CrossSite {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (g *Gate) secure() bool {
	return g.cookie.Secure || g.cookie.CrossSite
}

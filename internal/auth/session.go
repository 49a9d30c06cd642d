package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession covers malformed, tampered and expired credentials.
var ErrInvalidSession = errors.New("invalid session")

// Identity is who the operator is.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	RoleID   uint   `json:"role_id"`
	RoleName string `json:"role_name"`
}

// SessionCredential is the verified content of a session token.
type SessionCredential struct {
	Identity
	Grants    GrantSet
	Remember  bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Has reports whether the credential carries the grant.
func (c *SessionCredential) Has(r Resource, a Action) bool {
	return c != nil && c.Grants.Has(r, a)
}

type sessionClaims struct {
	Name     string   `json:"name"`
	Login    string   `json:"login"`
	Email    string   `json:"email"`
	RoleID   uint     `json:"role_id"`
	RoleName string   `json:"role"`
	Grants   []string `json:"grants"`
	Remember bool     `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret           []byte
	lifetime         time.Duration
	rememberLifetime time.Duration
	now              func() time.Time
}

func NewIssuer(secret []byte, lifetime, rememberLifetime time.Duration) *Issuer {
	return &Issuer{
		secret:           secret,
		lifetime:         lifetime,
		rememberLifetime: rememberLifetime,
		now:              time.Now,
	}
}

// WithClock returns a copy of the issuer reading time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Issue builds and signs a new credential.
func (i *Issuer) Issue(id Identity, grants GrantSet, remember bool) (*SessionCredential, string, error) {
	now := i.now().Truncate(time.Second)
	ttl := i.lifetime
	if remember {
		ttl = i.rememberLifetime
	}

	cred := &SessionCredential{
		Identity:  id,
		Grants:    grants,
		Remember:  remember,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	claims := sessionClaims{
		Name:     id.Name,
		Login:    id.Login,
		Email:    id.Email,
		RoleID:   id.RoleID,
		RoleName: id.RoleName,
		Grants:   grants.Tokens(),
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(cred.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session: %w", err)
	}
	return cred, signed, nil
}

// Parse verifies the signature and expiry and returns the credential.
func (i *Issuer) Parse(token string) (*SessionCredential, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}

	cred := &SessionCredential{
		Identity: Identity{
			UserID:   uint(userID),
			Name:     claims.Name,
			Login:    claims.Login,
			Email:    claims.Email,
			RoleID:   claims.RoleID,
			RoleName: claims.RoleName,
		},
		Grants:    NewGrantSet(claims.Grants),
		Remember:  claims.Remember,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	return cred, nil
}

// NeedsRenewal is true once more than half of the credential's lifetime has elapsed.
func (i *Issuer) NeedsRenewal(c *SessionCredential) bool {
	total := c.ExpiresAt.Sub(c.IssuedAt)
	return i.now().After(c.IssuedAt.Add(total / 2))
}

// Renew re-issues the credential with the same identity and grants and a fresh expiry.
func (i *Issuer) Renew(c *SessionCredential) (*SessionCredential, string, error) {
	return i.Issue(c.Identity, c.Grants, c.Remember)
}

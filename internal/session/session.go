// Package session provides the tenant/credential boundary: the sync core
// only ever asks "give me a valid school id and bearer token, or fail".
// Token acquisition and refresh are external concerns.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
)

// Provider supplies the current tenant identifier and bearer credential.
type Provider interface {
	// TenantID returns the current school identifier, or an error when
	// no authenticated tenant is available.
	TenantID() (string, error)

	// Token returns a bearer token valid for the remote API.
	Token() (string, error)
}

// Claims is the subset of the bearer token claims the client cares about.
// The server signs and verifies tokens; the client only reads them.
type Claims struct {
	SchoolID string `json:"school_id"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenProvider implements Provider over a raw JWT handed in by the
// authentication subsystem. The token is parsed without signature
// verification (the client holds no signing key); expiry is still
// enforced locally so a stale token fails fast instead of producing a
// guaranteed 401 round trip.
type TokenProvider struct {
	mu     sync.RWMutex
	raw    string
	claims *Claims
}

// NewTokenProvider creates an empty provider. Until SetToken is called,
// every accessor fails with NO_TENANT.
func NewTokenProvider() *TokenProvider {
	return &TokenProvider{}
}

// SetToken installs a new bearer token, replacing any previous one.
func (p *TokenProvider) SetToken(raw string) error {
	claims, err := parseClaims(raw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = raw
	p.claims = claims
	return nil
}

// Clear forgets the current token, e.g. on logout.
func (p *TokenProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = ""
	p.claims = nil
}

// TenantID returns the school identifier from the token claims.
func (p *TokenProvider) TenantID() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.claims == nil {
		return "", apperrors.New(apperrors.ErrNoTenant, "no authenticated session")
	}
	if expired(p.claims) {
		return "", apperrors.New(apperrors.ErrSessionExpired, "bearer token expired")
	}
	return p.claims.SchoolID, nil
}

// Token returns the raw bearer token.
func (p *TokenProvider) Token() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.raw == "" {
		return "", apperrors.New(apperrors.ErrNoTenant, "no authenticated session")
	}
	if expired(p.claims) {
		return "", apperrors.New(apperrors.ErrSessionExpired, "bearer token expired")
	}
	return p.raw, nil
}

// parseClaims decodes the token payload without verifying the signature.
func parseClaims(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "malformed bearer token", err)
	}
	if claims.SchoolID == "" {
		return nil, apperrors.New(apperrors.ErrNoTenant, "token carries no school_id claim")
	}
	return claims, nil
}

func expired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

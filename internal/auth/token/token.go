// Package token implements the session token manager: JWT issuance and
// validation plus credential extraction from cookies and headers.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ochen1/immich/internal/auth/models"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
)

const defaultTTL = 30 * 24 * time.Hour

// Claims are the JWT claims embedded in a session token. Each token carries
// exactly one auth type tag, used later to select logout behavior.
type Claims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	AuthType string `json:"authType"`
	jwt.RegisteredClaims
}

// Manager signs and parses session tokens.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewManager constructs a session token manager. A non-positive ttl falls
// back to the default of 30 days.
func NewManager(signingKey string, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue produces a signed session token embedding the user identity and the
// auth type that produced it.
func (m *Manager) Issue(user *models.User, authType models.AuthType) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID.String(),
		Email:    user.Email,
		AuthType: string(authType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Parse validates the signature, algorithm, and expiry of a session token and
// returns its claims. All failures map to unauthorized so callers cannot
// distinguish a forged token from an expired one.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing session token")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
	}

	return claims, nil
}

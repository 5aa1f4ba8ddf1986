// internal/devserver/token.go
package devserver

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// tokenIssuer mints and verifies the HS256 access/refresh pair. A dev
// server has no business with RSA key files; a shared secret is enough.
type tokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type tokenClaims struct {
	Purpose string `json:"purpose"` // access, refresh
	jwt.RegisteredClaims
}

func newTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{
		secret:     []byte(secret),
		issuer:     "chronoshop-mockapi",
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Access mints an access token for userID. Returns token and jti.
func (t *tokenIssuer) Access(userID string) (string, string, error) {
	return t.mint(userID, "access", t.accessTTL)
}

// Refresh mints a refresh token for userID. Returns token and jti.
func (t *tokenIssuer) Refresh(userID string) (string, string, error) {
	return t.mint(userID, "refresh", t.refreshTTL)
}

func (t *tokenIssuer) mint(userID, purpose string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := ulid.Make().String()
	claims := &tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, jti, nil
}

// Verify checks signature, expiry and purpose. Returns subject and jti.
func (t *tokenIssuer) Verify(token, purpose string) (string, string, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Purpose != purpose {
		return "", "", fmt.Errorf("token purpose mismatch: got %q, want %q", claims.Purpose, purpose)
	}
	return claims.Subject, claims.ID, nil
}

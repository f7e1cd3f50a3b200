package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an access token. TenantID binds the token to the
// tenant it was minted for; the identity binder rejects any request where
// this does not match the resolved tenant.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens with a shared secret.
// It is stateless and safe for concurrent use.
type TokenService struct {
	secret   []byte
	lifetime time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewTokenService creates a token service. Lifetime bounds access token
// validity; there is no refresh mechanism.
func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue mints an access token for the user, bound to the user's tenant.
// Returns the signed token and its expiry.
func (s *TokenService) Issue(user *User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.lifetime)

	claims := Claims{
		TenantID: user.TenantID,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Any structural, signature, or expiry failure returns nil; this boundary
// never surfaces parse errors to callers.
func (s *TokenService) Verify(tokenString string) *Claims {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// ServiceTokenIssuer mints short-lived HS256 bearer tokens for calls to the party API.
type ServiceTokenIssuer struct {
	secret  []byte
	subject string
	expiry  time.Duration
	now     func() time.Time
}

// NewServiceTokenIssuer returns an issuer signing with secret. Each token carries
// subject as sub and expires after expiry (one minute when expiry <= 0).
func NewServiceTokenIssuer(secret, subject string, expiry time.Duration) *ServiceTokenIssuer {
	if expiry <= 0 {
		expiry = time.Minute
	}
	return &ServiceTokenIssuer{secret: []byte(secret), subject: subject, expiry: expiry, now: time.Now}
}

// Token signs a fresh read-only token.
func (i *ServiceTokenIssuer) Token() (string, error) {
	now := i.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   i.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
		Scope: "read",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

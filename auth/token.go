package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried in every session token. FactoryID scopes all queries;
// Roles gate the management endpoints.
type Claims struct {
	UserID    string   `json:"uid"`
	FactoryID string   `json:"fid"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

func IssueToken(secret string, userID, factoryID string, roles []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		FactoryID: factoryID,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true when the claims carry at least one of the given
// roles. Admin implies everything below it.
func (c *Claims) HasAnyRole(roles ...string) bool {
	if c.HasRole("admin") {
		return true
	}
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}

// Package authz resolves callers and decides privilege. The platform glue
// authenticates each command invocation with a short-lived HS256 token
// carrying the caller's name and attached role labels; the guard applies
// the privileged-role policy over those labels.
package authz

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Caller is a resolved command invoker: display name plus the role labels
// attached on the chat platform.
type Caller struct {
	Name  string
	Roles []string
}

// Claims carries the caller identity inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// GenerateCallerToken signs a caller token valid for validityDuration.
func GenerateCallerToken(caller Caller, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Name:  caller.Name,
		Roles: caller.Roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseCallerToken verifies the signature and expiry and returns the
// embedded caller.
func ParseCallerToken(tokenString string, secretKey []byte) (*Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Caller{Name: claims.Name, Roles: claims.Roles}, nil
}

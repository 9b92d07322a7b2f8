package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the claims we read from identity-provider-issued tokens.
// OrgID is the caller's tenant; every org-scoped route checks it against
// the organization in the request path.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	OrgID  uuid.UUID `json:"org_id"`
	jwt.RegisteredClaims
}

// TokenValidator verifies tokens minted by the external identity provider.
// Login, registration, and session management live with the provider; this
// service only checks the shared HMAC signature and optional issuer.
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a token validator.
func NewTokenValidator(secret, issuer string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret), issuer: issuer}
}

// Validate parses and validates a token, returning claims or error.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil || claims.OrgID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

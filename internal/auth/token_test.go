package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func mintToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func validClaims() Claims {
	return Claims{
		UserID: uuid.New(),
		Email:  "admin@example.org",
		OrgID:  uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "idp.example.org",
		},
	}
}

func TestValidate(t *testing.T) {
	v := NewTokenValidator("secret", "")
	in := validClaims()

	claims, err := v.Validate(mintToken(t, "secret", in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != in.UserID || claims.OrgID != in.OrgID || claims.Email != in.Email {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	v := NewTokenValidator("secret", "")
	if _, err := v.Validate(mintToken(t, "other", validClaims())); err == nil {
		t.Fatal("expected error for wrong signing secret")
	}
}

func TestValidateExpired(t *testing.T) {
	v := NewTokenValidator("secret", "")
	in := validClaims()
	in.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	if _, err := v.Validate(mintToken(t, "secret", in)); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateIssuer(t *testing.T) {
	v := NewTokenValidator("secret", "idp.example.org")
	if _, err := v.Validate(mintToken(t, "secret", validClaims())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := validClaims()
	in.Issuer = "someone-else"
	if _, err := v.Validate(mintToken(t, "secret", in)); err == nil {
		t.Fatal("expected error for wrong issuer")
	}
}

func TestValidateMissingOrg(t *testing.T) {
	v := NewTokenValidator("secret", "")
	in := validClaims()
	in.OrgID = uuid.Nil
	if _, err := v.Validate(mintToken(t, "secret", in)); err == nil {
		t.Fatal("expected error for token without org claim")
	}
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is what the rest of the system knows about the signed-in owner.
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Type        string `json:"typ"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, email, displayName string) (string, error) {
	claims := Claims{
		Email:       email,
		DisplayName: displayName,
		Type:        typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GenerateRefreshToken(secret, email string) (string, error) {
	claims := Claims{
		Type: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken accepts access tokens only.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	return validate(secret, tokenStr, typeAccess)
}

// ValidateRefreshToken returns the email the refresh token was issued to.
func ValidateRefreshToken(secret, tokenStr string) (string, error) {
	claims, err := validate(secret, tokenStr, typeRefresh)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func validate(secret, tokenStr, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("expected %s token, got %q", wantType, claims.Type)
	}
	return claims, nil
}

// Package auth issues and verifies the signed, time-bounded tokens handed out
// by the session layer.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the token payload: sub is the user ID, jti makes every token
// unique even when two are minted in the same second.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ,omitempty"`
}

// Token is a signed token and the instant it stops being valid.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// GenerateToken signs an HS256 token for userID that is valid from issuedAt
// for validity.
func GenerateToken(userID, tokenType string, secretKey []byte, issuedAt time.Time, validity time.Duration) (Token, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return Token{}, err
	}

	expiresAt := issuedAt.Add(validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type: tokenType,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return Token{}, err
	}

	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken checks signature and expiry together. A correctly signed token
// past its expiry fails with common.ErrTokenExpired; anything else that does
// not verify fails with common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, common.ErrInvalidToken
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

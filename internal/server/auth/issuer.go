package auth

import (
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// Issuer mints access and refresh tokens. The two kinds use different
// secrets and lifetimes, so a leaked access secret cannot mint refresh tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now, for tests that need tokens minted in the past.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) IssueAccessToken(userID string) (Token, error) {
	return GenerateToken(userID, TypeAccess, i.accessSecret, i.now(), i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(userID string) (Token, error) {
	return GenerateToken(userID, TypeRefresh, i.refreshSecret, i.now(), i.refreshTTL)
}

// Verify checks token against secret and returns the subject user ID.
func (i *Issuer) Verify(token string, secret []byte) (string, error) {
	claims, err := ParseToken(token, secret, i.now)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (i *Issuer) VerifyAccessToken(token string) (string, error) {
	return i.verifyTyped(token, i.accessSecret, TypeAccess)
}

func (i *Issuer) VerifyRefreshToken(token string) (string, error) {
	return i.verifyTyped(token, i.refreshSecret, TypeRefresh)
}

func (i *Issuer) verifyTyped(token string, secret []byte, tokenType string) (string, error) {
	claims, err := ParseToken(token, secret, i.now)
	if err != nil {
		return "", err
	}
	if claims.Type != tokenType {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(opts ...Option) *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour, opts...)
}

func TestIssuer_RoundTrip(t *testing.T) {
	i := newTestIssuer()

	access, err := i.IssueAccessToken("u1")
	require.NoError(t, err)
	refresh, err := i.IssueRefreshToken("u1")
	require.NoError(t, err)

	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt), "refresh must outlive access")

	id, err := i.VerifyAccessToken(access.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	id, err = i.VerifyRefreshToken(refresh.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestIssuer_KindsAreNotInterchangeable(t *testing.T) {
	i := newTestIssuer()

	access, err := i.IssueAccessToken("u1")
	require.NoError(t, err)
	refresh, err := i.IssueRefreshToken("u1")
	require.NoError(t, err)

	_, err = i.VerifyRefreshToken(access.Value)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = i.VerifyAccessToken(refresh.Value)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssuer_TypeCheckedEvenWithSharedSecret(t *testing.T) {
	i := NewIssuer("same", "same", time.Minute, time.Hour)

	access, err := i.IssueAccessToken("u1")
	require.NoError(t, err)

	_, err = i.VerifyRefreshToken(access.Value)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssuer_ExpiredViaClock(t *testing.T) {
	past := time.Now().Add(-30 * 24 * time.Hour)
	old := newTestIssuer(WithClock(func() time.Time { return past }))

	refresh, err := old.IssueRefreshToken("u1")
	require.NoError(t, err)

	_, err = newTestIssuer().VerifyRefreshToken(refresh.Value)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestIssuer_VerifyWithExplicitSecret(t *testing.T) {
	i := newTestIssuer()

	access, err := i.IssueAccessToken("u9")
	require.NoError(t, err)

	id, err := i.Verify(access.Value, []byte("access-secret"))
	require.NoError(t, err)
	assert.Equal(t, "u9", id)

	_, err = i.Verify(access.Value, []byte("refresh-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; production uses DefaultArgon2Params
func testHasher() *Argon2idHasher {
	return NewArgon2idHasher(Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32})
}

func TestArgon2idHasher_HashAndVerify(t *testing.T) {
	h := testHasher()

	digest, err := h.Hash("p@ss1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, digest, "p@ss1")

	ok, err := h.Verify("p@ss1", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("p@ss2", digest)
	require.NoError(t, err, "mismatch is not an error")
	assert.False(t, ok)
}

func TestArgon2idHasher_Salted(t *testing.T) {
	h := testHasher()

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2idHasher_EmptyPassword(t *testing.T) {
	_, err := testHasher().Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestArgon2idHasher_VerifyUsesEncodedParams(t *testing.T) {
	digest, err := testHasher().Hash("secret")
	require.NoError(t, err)

	other := NewArgon2idHasher(DefaultArgon2Params())
	ok, err := other.Verify("secret", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2idHasher_InvalidDigest(t *testing.T) {
	h := testHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"plaintext", "p@ss1"},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv"},
		{"wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5"},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5"},
		{"zero threads", "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$a2V5"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
		{"bad key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!"},
		{"empty key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("p@ss1", tt.digest)
			require.ErrorIs(t, err, ErrInvalidHash)
			assert.False(t, ok)
		})
	}
}

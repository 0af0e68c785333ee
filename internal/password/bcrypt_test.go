package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"), "cost must be embedded in the hash: %s", hash)

	ok, err := h.Verify("password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password124", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_Salted(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHash_TooLong(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("p", MaxLength+1))
	require.ErrorIs(t, err, ErrTooLong)

	hash, err := h.Hash(strings.Repeat("p", MaxLength))
	require.NoError(t, err)
	ok, err := h.Verify(strings.Repeat("p", MaxLength), hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify("password123", "not-a-hash")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestVerify_HashFromOtherCost(t *testing.T) {
	low, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	high, err := NewBcrypt(bcrypt.MinCost + 1)
	require.NoError(t, err)

	hash, err := low.Hash("password123")
	require.NoError(t, err)

	ok, err := high.Verify("password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewBcrypt_Cost(t *testing.T) {
	h, err := NewBcrypt(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, h.cost)

	_, err = NewBcrypt(bcrypt.MaxCost + 1)
	require.Error(t, err)

	_, err = NewBcrypt(1)
	require.Error(t, err)
}

package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("super-secret", time.Hour)
	require.NoError(t, err)

	tok, err := c.Issue("user-123", "a@b.com")
	require.NoError(t, err)

	claims, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "user-123", claims.Subject)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.GreaterOrEqual(t, lifetime, time.Hour)
	assert.LessOrEqual(t, lifetime, time.Hour+time.Second)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour
	c, err := NewCodec("secret", ttl, WithClock(fixedClock(&now)))
	require.NoError(t, err)

	tok, err := c.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	issued := now
	now = issued.Add(ttl - time.Second)
	_, err = c.Verify(tok)
	require.NoError(t, err)

	now = issued.Add(ttl + time.Second)
	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_ExpiryBoundaryFractionalIssue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 900_000_000, time.UTC)
	ttl := time.Hour
	c, err := NewCodec("secret", ttl, WithClock(fixedClock(&now)))
	require.NoError(t, err)

	tok, err := c.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	issued := now
	for _, eps := range []time.Duration{500 * time.Millisecond, time.Millisecond, time.Nanosecond} {
		now = issued.Add(ttl - eps)
		_, err = c.Verify(tok)
		require.NoError(t, err, "at T+ttl-%s", eps)
	}

	now = issued.Add(ttl + time.Second)
	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewCodec("right-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewCodec("wrong-secret", time.Hour)
	require.NoError(t, err)

	tok, err := issuer.Issue("u2", "u2@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("secret", time.Hour)
	require.NoError(t, err)
	tok, err := c.Issue("u3", "u3@example.com")
	require.NoError(t, err)

	other, err := c.Issue("someone-else", "x@example.com")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = c.Verify(forged)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_MalformedString(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("k", time.Hour)
	require.NoError(t, err)

	for _, raw := range []string{"", "not.a.jwt", "garbage"} {
		_, err := c.Verify(raw)
		require.ErrorIs(t, err, ErrMalformed, "token %q", raw)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("secret", time.Hour)
	require.NoError(t, err)

	claims := Claims{
		UserID: "u4",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	c, err := NewCodec("secret", time.Hour)
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u5"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Verify(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify_Issuer(t *testing.T) {
	t.Parallel()

	a, err := NewCodec("secret", time.Hour, WithIssuer("mobile-auth"))
	require.NoError(t, err)
	b, err := NewCodec("secret", time.Hour, WithIssuer("someone-else"))
	require.NoError(t, err)

	tok, err := b.Issue("u6", "u6@example.com")
	require.NoError(t, err)

	_, err = a.Verify(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestNewCodec_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("", time.Hour)
	require.Error(t, err)

	_, err = NewCodec("secret", 0)
	require.Error(t, err)
}

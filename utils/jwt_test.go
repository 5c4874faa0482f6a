package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("super-secret", time.Hour)
	require.NoError(t, err)

	tok, err := m.Issue("user-123", "a@example.com")
	require.NoError(t, err)

	id, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	assert.Equal(t, "a@example.com", id.Email)
}

func TestNewTokenManager(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	m, err := NewTokenManager("k", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.TTL())
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	base, err := NewTokenManager("right-secret", time.Hour)
	require.NoError(t, err)
	m := base.WithClock(func() time.Time { return issuedAt })

	valid, err := m.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	other, err := NewTokenManager("wrong-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.WithClock(func() time.Time { return issuedAt }).Issue("u1", "u1@example.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1",
		"iss": tokenIssuer,
		"exp": issuedAt.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := []struct {
		name  string
		token string
		now   time.Time
	}{
		{"expired", valid, issuedAt.Add(2 * time.Hour)},
		{"wrong secret", foreign, issuedAt},
		{"tampered payload", tampered, issuedAt},
		{"alg none", noneToken, issuedAt},
		{"malformed", "not.a.jwt", issuedAt},
		{"empty", "", issuedAt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := tc.now
			_, err := base.WithClock(func() time.Time { return now }).Verify(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_WithClockDoesNotMutate(t *testing.T) {
	t.Parallel()

	m, err := NewTokenManager("k", time.Hour)
	require.NoError(t, err)
	past := m.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) })

	tok, err := past.Issue("u", "u@example.com")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	cases := map[string]int{"0": 0, " 12 ": 12, "1,200": 1200, "12,345,678": 12345678, "45.0": 45}
	for input, want := range cases {
		got, err := ParseCount(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "  ", "abc", "-1", "2.5", "NaN", "1,2,3", "1,2", "1,20", ",200", "1200,", "-1,200"} {
		_, err := ParseCount(input)
		assert.ErrorIs(t, err, ErrInvalidCount, input)
	}
}

func TestParseOptionalCount(t *testing.T) {
	n, err := ParseOptionalCount(" ")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = ParseOptionalCount("20")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 20, *n)

	_, err = ParseOptionalCount("twenty")
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestNewNullStringAndSplitList(t *testing.T) {
	assert.Nil(t, NewNullString("  "))
	assert.Equal(t, "memo", *NewNullString(" memo "))
	assert.Equal(t, []string{"planning", "creative"}, SplitList("planning, ,creative,"))
	assert.Nil(t, SplitList(""))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := manager.GenerateAccessToken("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	manager, err := NewJWTManager("test-secret", time.Minute)
	require.NoError(t, err)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := manager.GenerateAccessToken("admin")
	require.NoError(t, err)
	manager.now = time.Now

	_, err = manager.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other, err := NewJWTManager("other-secret", time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.GenerateAccessToken("admin")
	require.NoError(t, err)
	_, err = manager.ValidateToken(foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)
}

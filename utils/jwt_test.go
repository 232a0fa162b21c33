package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civicpulse/utils"
)

// TestTokenRoundTrip issues a token and parses the identity back out.
func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")

	token, err := utils.GenerateToken(42, "ada", "moderator", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "moderator", claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

// TestParseTokenRejectsExpired verifies an expired token fails validation.
func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")

	token, err := utils.GenerateToken(1, "ada", "citizen", -time.Minute)
	require.NoError(t, err)

	_, err = utils.ParseToken(token)
	assert.Error(t, err)
}

// TestParseTokenRejectsGarbage verifies malformed input fails cleanly.
func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")

	_, err := utils.ParseToken("not.a.token")
	assert.Error(t, err)
}

package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicpulse/civicpulse/utils"
)

// TestSanitizeStripsScripts verifies script injection is removed while basic
// formatting survives.
func TestSanitizeStripsScripts(t *testing.T) {
	out := utils.Sanitize(`<p>pothole on <b>5th</b></p><script>alert(1)</script>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<b>5th</b>")
}

// TestSanitizeStrictStripsAllMarkup verifies titles end up as plain text.
func TestSanitizeStrictStripsAllMarkup(t *testing.T) {
	out := utils.SanitizeStrict(`<b>Broken</b> <a href="x">streetlight</a>`)
	assert.Equal(t, "Broken streetlight", out)
}

// TestPasswordHashRoundTrip verifies bcrypt hashing and verification.
func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("correct horse battery")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, utils.CheckPassword(hash, "correct horse battery"))
	assert.False(t, utils.CheckPassword(hash, "wrong password"))
}

package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicpulse/civicpulse/utils"
)

// TestSlugify covers common community names.
func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Riverside Neighbors", "riverside-neighbors"},
		{"5th Ward  Cleanup!!", "5th-ward-cleanup"},
		{"--Park & Rec--", "park-rec"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, utils.Slugify(tc.in), "input %q", tc.in)
	}
}

// TestUniqueSlug verifies the random suffix keeps the base readable and two
// calls never collide.
func TestUniqueSlug(t *testing.T) {
	a := utils.UniqueSlug("Riverside Neighbors")
	b := utils.UniqueSlug("Riverside Neighbors")

	assert.True(t, strings.HasPrefix(a, "riverside-neighbors-"))
	assert.NotEqual(t, a, b)

	c := utils.UniqueSlug("!!!")
	assert.NotEmpty(t, c)
	assert.False(t, strings.HasPrefix(c, "-"))
}

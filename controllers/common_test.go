package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParsePagination covers defaults, clamping, and garbage input.
func TestParsePagination(t *testing.T) {
	cases := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", 1, 10},
		{"3", "25", 3, 25},
		{"0", "0", 1, 10},
		{"-2", "500", 1, 10},
		{"abc", "xyz", 1, 10},
		{"2", "100", 2, 100},
	}
	for _, tc := range cases {
		page, size := parsePagination(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page, "page input %q", tc.page)
		assert.Equal(t, tc.wantSize, size, "size input %q", tc.size)
	}
}

// TestPaginationPayload verifies total page rounding.
func TestPaginationPayload(t *testing.T) {
	p := paginationPayload(2, 10, 31)
	assert.Equal(t, 4, p["total_pages"])
	assert.Equal(t, int64(31), p["total"])

	p = paginationPayload(1, 10, 0)
	assert.Equal(t, 0, p["total_pages"])
}

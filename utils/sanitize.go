package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user generated HTML content (descriptions, comments, post
// bodies) to prevent XSS while keeping basic formatting.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup; used for titles, names, and addresses
// where no formatting is expected.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}

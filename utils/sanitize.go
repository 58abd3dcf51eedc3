package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated content (posts, comments, bios) so stored
// markup cannot carry scripts.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup. Used for identity fields like display
// names where no HTML is ever legitimate.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}

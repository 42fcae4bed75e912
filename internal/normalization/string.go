package normalization

import (
	"strings"
)

// ParseInputString lowercases and trims free-form caller input, used for
// status values and emails before they reach a query.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// TrimInput trims without lowercasing, for user-visible text like canvas
// names and entry titles.
func TrimInput(input string) string {
	return strings.TrimSpace(input)
}

// Package identifier provides validation and normalization for product
// catalog identifiers read from the input spreadsheet.
package identifier

import (
	"regexp"
	"strings"
)

// pattern matches a catalog identifier: one letter followed by nine
// alphanumeric characters, case-insensitive.
var pattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{9}$`)

// Valid reports whether the given string is a well-formed catalog
// identifier. Surrounding whitespace is not tolerated.
func Valid(id string) bool {
	return pattern.MatchString(id)
}

// Normalize returns the canonical uppercase form of an identifier.
// Normalize is idempotent; it does not check validity.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Sanitize validates, normalizes, and deduplicates raw identifier values.
// Invalid entries are dropped silently; duplicates (in any case) keep their
// first occurrence only, and the original order is preserved.
func Sanitize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))

	for _, r := range raw {
		trimmed := strings.TrimSpace(r)
		if !Valid(trimmed) {
			continue
		}
		id := Normalize(trimmed)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}

	return out
}

package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases `name` and removes all whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// ContainsName reports whether `name` contains `query` once both are
// normalized.
func ContainsName(name, query string) bool {
	return strings.Contains(NormalizeName(name), NormalizeName(query))
}

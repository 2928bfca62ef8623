// Package strings provides string manipulation utilities shared by the
// comparison and similarity code.
package strings

import (
	"strings"
)

// CollapseWhitespace trims s and folds every internal whitespace run to a
// single space. Comparable text must not differ by layout alone.
//
// Example:
//
//	CollapseWhitespace("  E &  C\tHOLDEN ")
//	// Returns: "E & C HOLDEN"
func CollapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// CollapseWhitespaceLower is like CollapseWhitespace but also lowercases,
// for case-insensitive comparison.
func CollapseWhitespaceLower(s string) string {
	return strings.ToLower(CollapseWhitespace(s))
}

// DedupeAndTrim removes duplicates and empty strings from a slice, trimming
// whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Package strings holds small helpers for list-valued inputs such as query
// parameters and environment variables.
package strings

import (
	"strings"
)

// SplitList splits each value on commas and returns the trimmed, non-empty
// parts with duplicates removed. Order of first occurrence is preserved.
//
//	SplitList("a, b", "", "b,c") // []string{"a", "b", "c"}
//
// A nil slice is returned when nothing survives.
func SplitList(values ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

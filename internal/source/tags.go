package source

import "strings"

// NormalizeTags trims, drops empties and removes duplicates while preserving
// first-seen order. The result is never nil.
func NormalizeTags(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SplitTags parses a whitespace-separated tag string, the format booru APIs use.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Fields(s))
}

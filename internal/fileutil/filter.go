package fileutil

import "strings"

// Excluded reports whether rel contains any of the exclude substrings.
// Matching is literal, not a pattern.
func Excluded(rel string, excludes []string) bool {
	for _, ex := range excludes {
		if strings.Contains(rel, ex) {
			return true
		}
	}
	return false
}

// ParseList splits a comma-separated flag value into trimmed, non-empty items.
// Empty items are dropped because an empty substring would match every path.
func ParseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

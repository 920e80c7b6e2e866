package pattern

import "strings"

// ExtFilter narrows candidates by file extension before any content is read.
// The zero value allows every file.
type ExtFilter struct {
	exts map[string]struct{}
}

// NewExtFilter builds a filter from extensions such as "go" or ".go".
// Comparison is case-sensitive; blank items are ignored.
func NewExtFilter(exts []string) ExtFilter {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.TrimLeft(strings.TrimSpace(e), ".")
		if e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return ExtFilter{}
	}
	return ExtFilter{exts: set}
}

// Empty reports whether the filter accepts everything.
func (f ExtFilter) Empty() bool {
	return len(f.exts) == 0
}

// Allows reports whether rel passes the filter.
func (f ExtFilter) Allows(rel string) bool {
	if f.Empty() {
		return true
	}
	ext, ok := Extension(rel)
	if !ok {
		return false
	}
	_, found := f.exts[ext]
	return found
}

// Extension returns the text after the last '.' of the final path element,
// without the dot. Dot files such as ".bashrc" have no extension.
func Extension(rel string) (string, bool) {
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}

	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return "", false
	}
	return base[i+1:], true
}

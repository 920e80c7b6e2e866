// Package pattern compiles path globs and matches file content for queries.
//
// Glob semantics are fixed and anchored to the whole root-relative path:
//
//	*      any run of characters except '/'
//	**/    zero or more whole path segments
//	**     (elsewhere) any run of characters, '/' included
//	?      exactly one character
//	[abc]  one character from the class; [!abc] or [^abc] negates it
//	{a,b}  alternation, may nest
//	\x     the literal character x
//
// The compiler walks the pattern once. Literal characters are escaped with
// regexp.QuoteMeta as they are read and wildcards are emitted as regular
// expression fragments, so an escaped '*' can never be expanded later.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidGlob is returned when a glob cannot be compiled.
var ErrInvalidGlob = errors.New("invalid glob pattern")

// Glob is a compiled path pattern. It is safe for concurrent use.
type Glob struct {
	source string
	re     *regexp.Regexp
}

// CompileGlob translates pattern into an anchored regular expression.
func CompileGlob(pattern string) (*Glob, error) {
	expr, err := translateGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidGlob, pattern, err)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidGlob, pattern, err)
	}
	return &Glob{source: pattern, re: re}, nil
}

// MustCompileGlob is like CompileGlob but panics on error.
func MustCompileGlob(pattern string) *Glob {
	g, err := CompileGlob(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Match reports whether the whole relative path matches the glob.
func (g *Glob) Match(rel string) bool {
	return g.re.MatchString(rel)
}

// String returns the original pattern.
func (g *Glob) String() string {
	return g.source
}

// Expr returns the compiled regular expression source.
func (g *Glob) Expr() string {
	return g.re.String()
}

// translateGlob converts a glob to an anchored regular expression.
func translateGlob(pattern string) (string, error) {
	src := []rune(pattern)

	var b strings.Builder
	b.WriteString("^")

	braces := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\\':
			if i+1 < len(src) {
				i++
				b.WriteString(regexp.QuoteMeta(string(src[i])))
			} else {
				b.WriteString(`\\`)
			}
		case '*':
			if i+1 < len(src) && src[i+1] == '*' {
				for i+1 < len(src) && src[i+1] == '*' {
					i++
				}
				if i+1 < len(src) && src[i+1] == '/' {
					i++
					b.WriteString(`(?:.*/)?`)
				} else {
					b.WriteString(`.*`)
				}
				continue
			}
			b.WriteString(`[^/]*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end, class, err := translateClass(src, i)
			if err != nil {
				return "", err
			}
			b.WriteString(class)
			i = end
		case '{':
			braces++
			b.WriteString(`(?:`)
		case ',':
			if braces > 0 {
				b.WriteString(`|`)
			} else {
				b.WriteString(`,`)
			}
		case '}':
			if braces > 0 {
				braces--
				b.WriteString(`)`)
			} else {
				b.WriteString(`\}`)
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	if braces != 0 {
		return "", errors.New("unclosed '{'")
	}

	b.WriteString("$")
	return b.String(), nil
}

// translateClass converts the bracket expression starting at src[start] and
// returns the index of its closing ']'.
func translateClass(src []rune, start int) (int, string, error) {
	i := start + 1
	negate := false
	if i < len(src) && (src[i] == '!' || src[i] == '^') {
		negate = true
		i++
	}

	var b strings.Builder
	b.WriteString("[")
	if negate {
		b.WriteString("^/")
	}

	first := true
	for ; i < len(src); i++ {
		c := src[i]
		if c == ']' && !first {
			b.WriteString("]")
			return i, b.String(), nil
		}
		first = false

		switch c {
		case '\\', '[', ']', '^':
			b.WriteString(`\`)
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return 0, "", errors.New("unclosed '['")
}

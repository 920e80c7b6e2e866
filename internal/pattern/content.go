package pattern

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrNotText is reported for files whose content is not valid UTF-8.
var ErrNotText = errors.New("content is not valid UTF-8 text")

// ScanStatus classifies the outcome of scanning one file.
type ScanStatus int

const (
	// ScanNoMatch means the file was read and no line matched.
	ScanNoMatch ScanStatus = iota
	// ScanMatched means at least one line matched.
	ScanMatched
	// ScanUnreadable means the file could not be opened, read, or decoded.
	ScanUnreadable
)

func (s ScanStatus) String() string {
	switch s {
	case ScanNoMatch:
		return "no-match"
	case ScanMatched:
		return "matched"
	case ScanUnreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("ScanStatus(%d)", int(s))
	}
}

// LineHit is a matching line within a scanned file.
type LineHit struct {
	Line    int    // 1-based line number
	Content string // Line text with surrounding whitespace trimmed
}

// ScanResult is the outcome of scanning one file.
type ScanResult struct {
	Status    ScanStatus
	Hits      []LineHit // In increasing line order
	Truncated bool      // Another matching line exists beyond the hit budget
	Err       error     // Set when Status is ScanUnreadable
}

// ContentMatcher finds lines containing a literal, case-sensitive query.
type ContentMatcher struct {
	query string
}

// NewContentMatcher returns a matcher for query. An empty query matches every line.
func NewContentMatcher(query string) *ContentMatcher {
	return &ContentMatcher{query: query}
}

// Query returns the literal being searched for.
func (m *ContentMatcher) Query() string {
	return m.query
}

// MatchLine reports whether line contains the query.
func (m *ContentMatcher) MatchLine(line string) bool {
	return strings.Contains(line, m.query)
}

// ScanFile reads path and returns at most max hits. The file is read in full
// and closed before scanning, so no handle outlives the call. A budget of zero
// or less performs no I/O.
func (m *ContentMatcher) ScanFile(path string, max int) ScanResult {
	if max <= 0 {
		return ScanResult{Status: ScanNoMatch, Truncated: true}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ScanResult{Status: ScanUnreadable, Err: err}
	}
	if !utf8.Valid(data) {
		return ScanResult{Status: ScanUnreadable, Err: ErrNotText}
	}

	return m.Scan(string(data), max)
}

// Scan matches text line by line. Lines are split on '\n' and a trailing
// '\r' is dropped; a final newline does not start an extra empty line.
// Once max hits are collected the scan continues only until the next
// matching line, which sets Truncated.
func (m *ContentMatcher) Scan(text string, max int) ScanResult {
	result := ScanResult{Status: ScanNoMatch}
	if max <= 0 {
		result.Truncated = true
		return result
	}

	lineNo := 0
	for len(text) > 0 {
		lineNo++

		var line string
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			line, text = text[:idx], text[idx+1:]
		} else {
			line, text = text, ""
		}
		line = strings.TrimSuffix(line, "\r")

		if !m.MatchLine(line) {
			continue
		}

		if len(result.Hits) >= max {
			result.Truncated = true
			break
		}
		result.Status = ScanMatched
		result.Hits = append(result.Hits, LineHit{Line: lineNo, Content: strings.TrimSpace(line)})
	}
	return result
}

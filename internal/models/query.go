package models

import (
	"errors"
	"fmt"
	"strings"
)

// OutputFormat selects the rendering used for results.
type OutputFormat string

// Supported output formats
const (
	FormatStructured OutputFormat = "structured" // JSON records
	FormatCompact    OutputFormat = "compact"    // header plus comma-separated rows
	FormatPlain      OutputFormat = "plain"      // space/colon separated lines
)

// Strategy selects how the traverser walks the tree.
type Strategy string

// Supported traversal strategies
const (
	// StrategyOrdered applies ignore and hidden rules while walking and is
	// deterministic when run with a single worker.
	StrategyOrdered Strategy = "ordered"
	// StrategyParallel fans directory reads out across workers and gives no
	// ordering guarantee. Hidden filtering is reapplied by the collector;
	// ignore rules are not evaluated.
	StrategyParallel Strategy = "parallel"
)

var (
	// ErrInvalidFormat is returned for unknown output format names.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidStrategy is returned for unknown traversal strategy names.
	ErrInvalidStrategy = errors.New("invalid traversal strategy")
)

// formatAliases maps accepted names, including the legacy json/toon names,
// to their canonical format.
var formatAliases = map[string]OutputFormat{
	"structured": FormatStructured,
	"json":       FormatStructured,
	"compact":    FormatCompact,
	"toon":       FormatCompact,
	"plain":      FormatPlain,
}

// ParseFormat resolves a user-supplied format name (case-insensitive).
func ParseFormat(name string) (OutputFormat, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w %q: must be one of structured, compact, plain", ErrInvalidFormat, name)
	}
	return f, nil
}

// ParseStrategy resolves a user-supplied strategy name (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyOrdered, "":
		return StrategyOrdered, nil
	case StrategyParallel:
		return StrategyParallel, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of ordered, parallel", ErrInvalidStrategy, name)
	}
}

// TraversalConfig is the fully resolved configuration handed to the query
// engine for a single operation. It is a plain value so one process can run
// many queries with different policies concurrently.
type TraversalConfig struct {
	Root          string       // Base directory; output paths are relative to it
	RespectIgnore bool         // Skip entries matched by .gitignore/.ignore rules
	IncludeHidden bool         // Include dot-prefixed entries
	Excludes      []string     // Literal substrings; any match skips the path
	Limit         int          // Maximum records or hits produced
	Format        OutputFormat // Rendering for the emitter
	Streaming     bool         // Emit results as found instead of buffering
	Strategy      Strategy     // Traversal strategy
	Workers       int          // Worker count; 0 picks the strategy default
	MaxDepth      int          // Directory depth ceiling; 0 uses the default
}

package models

import "time"

// Operation names recorded for each run.
const (
	OpFind     = "find"
	OpSearch   = "search"
	OpList     = "list"
	OpEstimate = "estimate"
)

// RunSummary describes one completed operation. It feeds the run logs and
// the optional history store.
type RunSummary struct {
	ID         string        // Unique run identifier
	Operation  string        // find, search, list, estimate
	Root       string        // Absolute root directory
	Query      string        // Pattern or query text, empty for list/estimate
	Format     OutputFormat  // Output format used
	Results    int           // Records or hits emitted
	Visited    int           // File entries produced by the traverser
	Excluded   int           // Entries dropped by exclude substrings
	Unreadable int           // Files that could not be read for content
	Truncated  bool          // Stopped because the result limit was reached
	StartedAt  time.Time     // Wall-clock start
	Duration   time.Duration // Elapsed time
}

// Package query runs find, search and list operations over a directory tree.
//
// An Engine pairs one TraversalConfig with a walker and applies, per entry and
// in this order: substring exclusion, the hidden policy (reapplied for the
// parallel strategy), the extension filter, and finally the path glob or the
// content scan. Results are handed to an emit callback as soon as they are
// produced; the callback decides whether to buffer or stream them.
//
// The result limit is a hard ceiling. Once it is reached the walk goes on
// only until one more result turns up; that result is not emitted, it marks
// the run truncated and stops the walk. A tree holding exactly limit results
// is therefore not truncated. A limit of zero returns immediately without
// touching the filesystem.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/pattern"
)

// ErrInvalidPattern wraps glob compilation failures.
var ErrInvalidPattern = errors.New("invalid pattern")

// FileEmitFunc receives each FileRecord as it is produced.
type FileEmitFunc func(models.FileRecord) error

// HitEmitFunc receives each SearchHit as it is produced.
type HitEmitFunc func(models.SearchHit) error

// Stats summarises one operation.
type Stats struct {
	Emitted    int  // Records or hits passed to the emit callback
	Visited    int  // File entries produced by the walker
	Excluded   int  // Entries dropped by exclude substrings
	Hidden     int  // Entries dropped by the reapplied hidden policy
	Unreadable int  // Files skipped because their content could not be read
	Truncated  bool // More results existed beyond the limit
}

// Engine executes queries for a single TraversalConfig. It keeps no state
// between calls, so one Engine may serve concurrent operations.
type Engine struct {
	cfg    models.TraversalConfig
	logger fileutil.Logger
}

// NewEngine returns an Engine for cfg. A nil logger discards diagnostics.
func NewEngine(cfg models.TraversalConfig, logger fileutil.Logger) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() models.TraversalConfig {
	return e.cfg
}

// Find emits every file whose relative path matches the glob.
// The glob is compiled before any traversal; a bad glob is returned as an
// error wrapping ErrInvalidPattern.
func (e *Engine) Find(ctx context.Context, glob string, emit FileEmitFunc) (*Stats, error) {
	g, err := pattern.CompileGlob(glob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return e.collectFiles(ctx, g.Match, emit)
}

// List emits every file, subject only to the exclusion and hidden policy.
func (e *Engine) List(ctx context.Context, emit FileEmitFunc) (*Stats, error) {
	return e.collectFiles(ctx, nil, emit)
}

// Search emits one hit per line containing query, across files whose
// extension is in exts (all files when exts is empty). Files that cannot be
// read or are not valid UTF-8 contribute no hits and are counted in
// Stats.Unreadable.
func (e *Engine) Search(ctx context.Context, query string, exts []string, emit HitEmitFunc) (*Stats, error) {
	walker, err := e.walker()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	if e.cfg.Limit <= 0 {
		return stats, nil
	}

	matcher := pattern.NewContentMatcher(query)
	filter := pattern.NewExtFilter(exts)

	err = walker.Walk(ctx, func(entry fileutil.Entry) error {
		if !e.admit(entry, stats) {
			return nil
		}
		if !filter.Allows(entry.RelPath) {
			return nil
		}

		// at the limit, one more matching line is enough to mark truncation
		full := stats.Emitted >= e.cfg.Limit
		budget := e.cfg.Limit - stats.Emitted
		if full {
			budget = 1
		}

		result := matcher.ScanFile(entry.Path, budget)
		switch result.Status {
		case pattern.ScanUnreadable:
			stats.Unreadable++
			e.logger.LogDebug(fmt.Sprintf("skipping unreadable file %s: %v", entry.RelPath, result.Err))
			return nil
		case pattern.ScanNoMatch:
			return nil
		}
		if full {
			stats.Truncated = true
			return fileutil.ErrStopWalk
		}

		for _, hit := range result.Hits {
			if err := emit(models.SearchHit{Path: entry.RelPath, Line: hit.Line, Content: hit.Content}); err != nil {
				return err
			}
			stats.Emitted++
		}
		if result.Truncated {
			stats.Truncated = true
			return fileutil.ErrStopWalk
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// collectFiles walks the tree and emits a FileRecord for every admitted file
// accepted by match. A nil match accepts everything.
func (e *Engine) collectFiles(ctx context.Context, match func(string) bool, emit FileEmitFunc) (*Stats, error) {
	walker, err := e.walker()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	if e.cfg.Limit <= 0 {
		return stats, nil
	}

	err = walker.Walk(ctx, func(entry fileutil.Entry) error {
		if !e.admit(entry, stats) {
			return nil
		}
		if match != nil && !match(entry.RelPath) {
			return nil
		}

		if stats.Emitted >= e.cfg.Limit {
			stats.Truncated = true
			return fileutil.ErrStopWalk
		}
		if err := emit(models.FileRecord{Path: entry.RelPath, Size: entry.Size()}); err != nil {
			return err
		}
		stats.Emitted++
		return nil
	})
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// admit applies the checks every operation shares: exclusion first, then the
// hidden policy when the walker did not apply it.
func (e *Engine) admit(entry fileutil.Entry, stats *Stats) bool {
	stats.Visited++
	if fileutil.Excluded(entry.RelPath, e.cfg.Excludes) {
		stats.Excluded++
		return false
	}
	if e.cfg.Strategy == models.StrategyParallel && !e.cfg.IncludeHidden && fileutil.IsHiddenPath(entry.RelPath) {
		stats.Hidden++
		return false
	}
	return true
}

// walker builds the walker for the configured strategy. Root validation
// happens here, before any limit check, so a bad root is always reported.
func (e *Engine) walker() (*fileutil.Walker, error) {
	if e.cfg.Strategy == models.StrategyParallel && e.cfg.RespectIgnore {
		e.logger.LogWarn("ignore rules are not applied by the parallel strategy; use --strategy ordered to honour them")
	}

	w, err := fileutil.NewWalker(e.cfg.Root, fileutil.WalkOptions{
		Strategy:      e.cfg.Strategy,
		RespectIgnore: e.cfg.RespectIgnore,
		IncludeHidden: e.cfg.IncludeHidden,
		Workers:       e.cfg.Workers,
		MaxDepth:      e.cfg.MaxDepth,
	}, e.logger)
	if err != nil {
		return nil, err
	}
	opts := w.Options()
	e.logger.LogDebug(fmt.Sprintf("walking %s (%s, %d workers)", w.Root(), opts.Strategy, opts.Workers))
	return w, nil
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogWarn(string)  {}

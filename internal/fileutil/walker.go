package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/harrison/scout/internal/models"
)

// DefaultMaxDepth is the directory depth ceiling used when none is configured.
const DefaultMaxDepth = 256

var (
	// ErrStopWalk is returned by a WalkFunc to end the walk early. Walk
	// itself returns nil in that case.
	ErrStopWalk = errors.New("stop walk")

	// ErrNotDirectory is returned when the walk root is not a directory.
	ErrNotDirectory = errors.New("root is not a directory")
)

// Logger receives diagnostics about skipped entries.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogWarn(string)  {}

// Entry is a regular file found during a walk.
type Entry struct {
	Path    string // Absolute filesystem path
	RelPath string // Root-relative path with forward slashes
}

// Size returns the file size in bytes, following symlinks.
// Metadata failures are swallowed and reported as 0.
func (e Entry) Size() uint64 {
	info, err := os.Stat(e.Path)
	if err != nil || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

// WalkFunc is called once per file entry. Returning ErrStopWalk ends the walk
// without error; any other error aborts the walk and is returned by Walk.
type WalkFunc func(Entry) error

// WalkOptions configures a Walker.
type WalkOptions struct {
	// Strategy selects ordered (policy-aware) or parallel (flat) traversal.
	Strategy models.Strategy
	// RespectIgnore skips entries matched by .gitignore/.ignore rules (ordered only).
	RespectIgnore bool
	// IncludeHidden keeps dot-prefixed entries (ordered only; parallel keeps all).
	IncludeHidden bool
	// Workers is the number of concurrent directory readers. For the ordered
	// strategy 0 or 1 means a sequential walk; parallel defaults to NumCPU.
	Workers int
	// MaxDepth limits directory recursion (0 = DefaultMaxDepth).
	MaxDepth int
}

// Walker enumerates regular files under a root directory.
// A Walker holds no mutable state and may be reused across walks.
type Walker struct {
	root   string
	opts   WalkOptions
	logger Logger
}

// dirJob is one directory waiting to be read.
type dirJob struct {
	abs   string
	rel   string
	depth int
	rules ignoreStack
}

// NewWalker validates root and returns a Walker for it.
// A nil logger discards diagnostics.
func NewWalker(root string, opts WalkOptions, logger Logger) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	if opts.Strategy == "" {
		opts.Strategy = models.StrategyOrdered
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Strategy == models.StrategyParallel && opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = nopLogger{}
	}

	return &Walker{root: absRoot, opts: opts, logger: logger}, nil
}

// Root returns the absolute walk root.
func (w *Walker) Root() string {
	return w.root
}

// Options returns the effective options after defaulting.
func (w *Walker) Options() WalkOptions {
	return w.opts
}

// Deterministic reports whether repeated walks visit entries in the same order.
func (w *Walker) Deterministic() bool {
	return w.opts.Strategy == models.StrategyOrdered && w.opts.Workers <= 1
}

// Walk visits every regular file under the root.
func (w *Walker) Walk(ctx context.Context, fn WalkFunc) error {
	root := dirJob{abs: w.root}
	if w.policyAware() && w.opts.RespectIgnore {
		root.rules = ancestorRules(w.root, w.logger)
	}

	var err error
	if w.Deterministic() {
		err = w.walkSequential(ctx, root, fn)
	} else {
		err = w.walkConcurrent(ctx, root, fn)
	}

	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

// walkSequential is a depth-first walk that calls fn on the caller's goroutine.
func (w *Walker) walkSequential(ctx context.Context, job dirJob, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, rules, err := w.readDir(job)
	if err != nil {
		w.logger.LogDebug(fmt.Sprintf("skipping unreadable directory %s: %v", job.abs, err))
		return nil
	}
	job.rules = rules

	for _, de := range entries {
		child, file := w.visitEntry(job, de)
		switch {
		case child != nil:
			if err := w.walkSequential(ctx, *child, fn); err != nil {
				return err
			}
		case file != nil:
			if err := fn(*file); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkConcurrent reads directories on a bounded pool and funnels entries to
// fn on the caller's goroutine, so fn needs no locking.
func (w *Walker) walkConcurrent(parent context.Context, root dirJob, fn WalkFunc) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	workers := w.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	entries := make(chan Entry, workers*64)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	var visit func(job dirJob)
	visit = func(job dirJob) {
		defer wg.Done()

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		des, rules, err := w.readDir(job)
		<-sem

		if err != nil {
			w.logger.LogDebug(fmt.Sprintf("skipping unreadable directory %s: %v", job.abs, err))
			return
		}
		job.rules = rules

		for _, de := range des {
			child, file := w.visitEntry(job, de)
			if child != nil {
				wg.Add(1)
				go visit(*child)
				continue
			}
			if file != nil {
				select {
				case entries <- *file:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	wg.Add(1)
	go visit(root)
	go func() {
		wg.Wait()
		close(entries)
	}()

	var walkErr error
	for e := range entries {
		if walkErr != nil {
			continue // draining after cancellation
		}
		if err := fn(e); err != nil {
			walkErr = err
			cancel()
		}
	}

	if walkErr == nil {
		walkErr = parent.Err()
	}
	return walkErr
}

// readDir lists a directory and returns the ignore rules in effect for its
// children.
func (w *Walker) readDir(job dirJob) ([]fs.DirEntry, ignoreStack, error) {
	entries, err := os.ReadDir(job.abs)
	if err != nil {
		return nil, nil, err
	}

	rules := job.rules
	if w.policyAware() && w.opts.RespectIgnore {
		rules = rules.load(job.abs, w.logger)
	}
	return entries, rules, nil
}

// visitEntry classifies one directory entry. It returns a child job for a
// directory to descend into, a file entry to emit, or neither when the entry
// is skipped.
func (w *Walker) visitEntry(job dirJob, de fs.DirEntry) (*dirJob, *Entry) {
	name := de.Name()
	abs := filepath.Join(job.abs, name)
	rel := name
	if job.rel != "" {
		rel = job.rel + "/" + name
	}
	isDir := de.IsDir()

	if w.policyAware() {
		if !w.opts.IncludeHidden && isHiddenName(name) {
			return nil, nil
		}
		if w.opts.RespectIgnore {
			if isDir && name == ".git" {
				return nil, nil
			}
			if job.rules.ignores(abs, isDir) {
				w.logger.LogDebug(fmt.Sprintf("ignored by rules: %s", rel))
				return nil, nil
			}
		}
	}

	if isDir {
		if job.depth+1 > w.opts.MaxDepth {
			w.logger.LogDebug(fmt.Sprintf("depth ceiling reached, not descending into %s", rel))
			return nil, nil
		}
		return &dirJob{abs: abs, rel: rel, depth: job.depth + 1, rules: job.rules}, nil
	}

	mode := de.Type()
	if mode&fs.ModeSymlink != 0 {
		// Links are resolved for files only; directory links are never followed.
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.LogDebug(fmt.Sprintf("skipping broken symlink %s: %v", rel, err))
			return nil, nil
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return nil, &Entry{Path: abs, RelPath: rel}
	}
	if !mode.IsRegular() {
		return nil, nil
	}

	return nil, &Entry{Path: abs, RelPath: rel}
}

// policyAware reports whether hidden and ignore rules are applied by the walker.
func (w *Walker) policyAware() bool {
	return w.opts.Strategy == models.StrategyOrdered
}

// isHiddenName reports whether a single path element is a dot entry.
func isHiddenName(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// IsHiddenPath reports whether any element of a root-relative path is hidden.
// Collectors use it to reapply the hidden policy on top of a parallel walk.
func IsHiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if isHiddenName(part) {
			return true
		}
	}
	return false
}

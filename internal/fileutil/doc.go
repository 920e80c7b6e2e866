// Package fileutil walks a root directory and decides which entries become
// query candidates.
//
// Two traversal strategies are available, chosen when the Walker is built:
//
//   - models.StrategyOrdered applies hidden-file and ignore-rule policy while
//     walking. Ignore rules (.gitignore and .ignore) are loaded per directory
//     and accumulated down the tree, so a rule only affects entries below the
//     directory that declares it. With a single worker the walk is depth-first
//     and entries are visited in directory-listing (name) order, which makes
//     repeated runs on an unchanged tree identical.
//   - models.StrategyParallel reads directories on a worker pool and funnels
//     entries to a single consumer. It applies no hidden or ignore policy and
//     gives no ordering guarantee; callers that need ordered output must use
//     the ordered strategy.
//
// Both strategies skip unreadable entries instead of failing, never follow
// directory symlinks, and stop descending at a depth ceiling. A WalkFunc
// returns ErrStopWalk to end a walk early; in-flight parallel reads are
// cancelled and drained before Walk returns.
//
// Basic usage:
//
//	w, err := fileutil.NewWalker(root, fileutil.WalkOptions{RespectIgnore: true}, nil)
//	if err != nil {
//	    return err
//	}
//	err = w.Walk(ctx, func(e fileutil.Entry) error {
//	    fmt.Println(e.RelPath, e.Size())
//	    return nil
//	})
//
// Excluded and ParseList implement the literal-substring path filter used by
// the query engine.
package fileutil

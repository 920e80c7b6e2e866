package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// ignoreFileNames are the rule files read in every directory, in order.
var ignoreFileNames = []string{".gitignore", ".ignore"}

// ignoreStack holds the ignore matchers of every ancestor directory, root
// first. Matchers compute paths relative to the directory that declared them.
type ignoreStack []gitignore.IgnoreMatcher

// load returns a new stack extended with the rule files found in dir.
// The receiver is never modified, so stacks can be shared across goroutines.
func (s ignoreStack) load(dir string, logger Logger) ignoreStack {
	out := s[:len(s):len(s)]
	for _, name := range ignoreFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		matcher, err := gitignore.NewGitIgnore(path)
		if err != nil {
			logger.LogWarn(fmt.Sprintf("could not parse ignore file %s: %v", path, err))
			continue
		}
		out = append(out, matcher)
	}
	return out
}

// ignores reports whether any ancestor's rules exclude the absolute path.
func (s ignoreStack) ignores(abs string, isDir bool) bool {
	for _, m := range s {
		if m.Match(abs, isDir) {
			return true
		}
	}
	return false
}

// ancestorRules loads the rule files of the directories above root, up to
// and including the nearest one that contains .git. A root outside any
// repository, or at the top of one, inherits no rules.
func ancestorRules(root string, logger Logger) ignoreStack {
	if hasGitDir(root) {
		return nil
	}

	var dirs []string
	for dir := filepath.Dir(root); ; dir = filepath.Dir(dir) {
		dirs = append(dirs, dir)
		if hasGitDir(dir) {
			break
		}
		if filepath.Dir(dir) == dir {
			return nil
		}
	}

	var rules ignoreStack
	for i := len(dirs) - 1; i >= 0; i-- {
		rules = rules.load(dirs[i], logger)
	}
	return rules
}

// hasGitDir reports whether dir holds a .git directory or worktree file.
func hasGitDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

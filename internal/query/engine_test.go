package query

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func baseConfig(root string) models.TraversalConfig {
	return models.TraversalConfig{
		Root:          root,
		RespectIgnore: true,
		Limit:         100,
		Format:        models.FormatCompact,
		Strategy:      models.StrategyOrdered,
	}
}

func findPaths(t *testing.T, cfg models.TraversalConfig, glob string) []string {
	t.Helper()
	var paths []string
	_, err := NewEngine(cfg, nil).Find(context.Background(), glob, func(r models.FileRecord) error {
		paths = append(paths, r.Path)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func listRecords(t *testing.T, cfg models.TraversalConfig) []models.FileRecord {
	t.Helper()
	var records []models.FileRecord
	_, err := NewEngine(cfg, nil).List(context.Background(), func(r models.FileRecord) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records
}

func TestListSkipsHiddenFiles(t *testing.T) {
	for _, strategy := range []models.Strategy{models.StrategyOrdered, models.StrategyParallel} {
		t.Run(string(strategy), func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, map[string]string{
				"a/b.txt":       "0123456789",
				"a/.hidden.txt": "01234",
			})

			cfg := baseConfig(root)
			cfg.Strategy = strategy
			assert.Equal(t, []models.FileRecord{{Path: "a/b.txt", Size: 10}}, listRecords(t, cfg))

			cfg.IncludeHidden = true
			assert.Len(t, listRecords(t, cfg), 2)
		})
	}
}

func TestSearchFindsNeedle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.x":  "one\ntwo\n  needle found here\nfour\n",
		"src/main.y":  "needle in the wrong extension\n",
		"src/other.x": "nothing here\n",
	})

	var hits []models.SearchHit
	stats, err := NewEngine(baseConfig(root), nil).Search(context.Background(), "needle", []string{"x"}, func(h models.SearchHit) error {
		hits = append(hits, h)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []models.SearchHit{{Path: "src/main.x", Line: 3, Content: "needle found here"}}, hits)
	assert.Equal(t, 1, stats.Emitted)
	assert.False(t, stats.Truncated)
}

func TestSearchSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.txt": "needle\n"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.bin"), []byte{'n', 'e', 'e', 'd', 'l', 'e', 0xff}, 0644))

	var hits []models.SearchHit
	stats, err := NewEngine(baseConfig(root), nil).Search(context.Background(), "needle", nil, func(h models.SearchHit) error {
		hits = append(hits, h)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "ok.txt", hits[0].Path)
	assert.Equal(t, 1, stats.Unreadable)
}

func TestSearchLimitTruncatesMidFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "x1\nx2\nx3\nx4\n",
		"b.txt": "x5\n",
	})

	cfg := baseConfig(root)
	cfg.Limit = 3

	var hits []models.SearchHit
	stats, err := NewEngine(cfg, nil).Search(context.Background(), "x", nil, func(h models.SearchHit) error {
		hits = append(hits, h)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, hits, 3)
	for i, h := range hits {
		assert.Equal(t, "a.txt", h.Path)
		assert.Equal(t, i+1, h.Line)
	}
	assert.True(t, stats.Truncated)
}

func TestTruncatedOnlyWhenMoreResultsExist(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "hit\n",
		"b.txt": "hit\nhit\n",
	})
	ctx := context.Background()
	nop := func(models.FileRecord) error { return nil }

	tests := []struct {
		name          string
		limit         int
		wantEmitted   int
		wantTruncated bool
	}{
		{"exactly limit", 2, 2, false},
		{"more than limit", 1, 1, true},
		{"limit above count", 5, 2, false},
	}
	for _, tt := range tests {
		t.Run("list "+tt.name, func(t *testing.T) {
			cfg := baseConfig(root)
			cfg.Limit = tt.limit
			stats, err := NewEngine(cfg, nil).List(ctx, nop)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmitted, stats.Emitted)
			assert.Equal(t, tt.wantTruncated, stats.Truncated)
		})
	}

	searchTests := []struct {
		name          string
		limit         int
		wantEmitted   int
		wantTruncated bool
	}{
		{"exactly limit across files", 3, 3, false},
		{"limit reached inside a file", 2, 2, true},
		{"limit reached at file boundary", 1, 1, true},
	}
	for _, tt := range searchTests {
		t.Run("search "+tt.name, func(t *testing.T) {
			cfg := baseConfig(root)
			cfg.Limit = tt.limit
			stats, err := NewEngine(cfg, nil).Search(ctx, "hit", nil, func(models.SearchHit) error { return nil })
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmitted, stats.Emitted)
			assert.Equal(t, tt.wantTruncated, stats.Truncated)
		})
	}
}

func TestFindGlobSemantics(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.rs":     "",
		"dir/main.rs": "",
		"dir/lib.go":  "",
	})
	cfg := baseConfig(root)

	assert.Equal(t, []string{"main.rs"}, findPaths(t, cfg, "*.rs"))
	assert.Equal(t, []string{"dir/main.rs", "main.rs"}, findPaths(t, cfg, "**/*.rs"))
}

func TestFindNeverReturnsDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pkg/sub/file.go": ""})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	assert.Equal(t, []string{"pkg/sub/file.go"}, findPaths(t, baseConfig(root), "**"))
}

func TestListMatchesFindAll(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":     "*.log\n",
		"a.go":           "",
		"b.log":          "",
		"x/y/z.txt":      "",
		"x/.secret":      "",
		"vendor/dep.go":  "",
		"vendor/dep.log": "",
	})

	for _, strategy := range []models.Strategy{models.StrategyOrdered, models.StrategyParallel} {
		cfg := baseConfig(root)
		cfg.Strategy = strategy

		var listed []string
		for _, r := range listRecords(t, cfg) {
			listed = append(listed, r.Path)
		}
		assert.Equal(t, listed, findPaths(t, cfg, "**"), string(strategy))
	}
}

func TestExclusionIsSubset(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"cmd/main.go":        "",
		"vendor/lib/x.go":    "",
		"internal/vendor.go": "",
		"docs/readme.md":     "",
	})

	cfg := baseConfig(root)
	all := findPaths(t, cfg, "**")

	for _, excludes := range [][]string{{"vendor"}, {"docs", "cmd"}, {"zzz"}} {
		cfg.Excludes = excludes
		filtered := findPaths(t, cfg, "**")
		assert.Subset(t, all, filtered)
		for _, p := range filtered {
			for _, ex := range excludes {
				assert.NotContains(t, p, ex)
			}
		}
	}
}

func TestLimitNeverExceeded(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		files["d1/"+name+".txt"] = "hit\nhit\n"
		files["d2/"+name+".txt"] = "hit\n"
	}
	writeTree(t, root, files)

	for _, strategy := range []models.Strategy{models.StrategyOrdered, models.StrategyParallel} {
		for _, limit := range []int{1, 3, 5, 100} {
			cfg := baseConfig(root)
			cfg.Strategy = strategy
			cfg.Workers = 4
			cfg.Limit = limit

			paths := findPaths(t, cfg, "**/*.txt")
			assert.LessOrEqual(t, len(paths), limit)

			count := 0
			_, err := NewEngine(cfg, nil).Search(context.Background(), "hit", nil, func(models.SearchHit) error {
				count++
				return nil
			})
			require.NoError(t, err)
			assert.LessOrEqual(t, count, limit)
		}
	}
}

func TestZeroLimitDoesNoWork(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "needle\n"})

	cfg := baseConfig(root)
	cfg.Limit = 0
	engine := NewEngine(cfg, nil)
	ctx := context.Background()

	fail := func(models.FileRecord) error { return errors.New("emit must not be called") }

	stats, err := engine.List(ctx, fail)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *stats)

	stats, err = engine.Find(ctx, "*", fail)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Visited)

	stats, err = engine.Search(ctx, "needle", nil, func(models.SearchHit) error {
		return errors.New("emit must not be called")
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Visited)
}

func TestIdempotentResults(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/1.txt": "k\n", "a/2.txt": "k\n", "b/3.txt": "k\n", "c.txt": "k\n",
	})
	cfg := baseConfig(root)

	assert.Equal(t, findPaths(t, cfg, "**"), findPaths(t, cfg, "**"))

	var first, second []models.FileRecord
	_, err := NewEngine(cfg, nil).List(context.Background(), func(r models.FileRecord) error {
		first = append(first, r)
		return nil
	})
	require.NoError(t, err)
	_, err = NewEngine(cfg, nil).List(context.Background(), func(r models.FileRecord) error {
		second = append(second, r)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, first, second, "sequential ordered walks are deterministic")
}

func TestInvalidInputsFailBeforeTraversal(t *testing.T) {
	root := t.TempDir()
	cfg := baseConfig(root)

	_, err := NewEngine(cfg, nil).Find(context.Background(), "*.{go", func(models.FileRecord) error {
		t.Fatal("no traversal expected")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	cfg.Root = filepath.Join(root, "missing")
	_, err = NewEngine(cfg, nil).List(context.Background(), func(models.FileRecord) error { return nil })
	assert.Error(t, err)

	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	cfg.Root = file
	_, err = NewEngine(cfg, nil).List(context.Background(), func(models.FileRecord) error { return nil })
	assert.ErrorIs(t, err, fileutil.ErrNotDirectory)
}

func TestEmitErrorAbortsOperation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "", "b.txt": ""})

	boom := errors.New("broken pipe")
	stats, err := NewEngine(baseConfig(root), nil).List(context.Background(), func(models.FileRecord) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, stats.Emitted)
}

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) LogDebug(string)     {}
func (r *recordingLogger) LogWarn(msg string) { r.warnings = append(r.warnings, msg) }

func TestParallelWarnsAboutIgnoreRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{".gitignore": "*.log\n", "a.log": "", "b.txt": ""})

	cfg := baseConfig(root)
	cfg.Strategy = models.StrategyParallel
	log := &recordingLogger{}

	var paths []string
	_, err := NewEngine(cfg, log).List(context.Background(), func(r models.FileRecord) error {
		paths = append(paths, r.Path)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)

	assert.Equal(t, []string{"a.log", "b.txt"}, paths)
	require.Len(t, log.warnings, 1)
	assert.True(t, strings.Contains(log.warnings[0], "parallel"))
}

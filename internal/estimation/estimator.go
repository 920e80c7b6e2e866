// Package estimation extrapolates tree size from a deterministic sample.
// It enumerates every file once but reads metadata only for the first
// sample files, so a large tree costs one directory walk plus a bounded
// number of stat calls.
package estimation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/pattern"
)

// NoExtension labels files without an extension in the histogram.
const NoExtension = "(none)"

// TopExtensionCount is the number of extensions reported.
const TopExtensionCount = 5

// Estimator samples a tree with a sequential ordered walk. Hidden entries are
// included and ignore rules are off, so every file counts.
type Estimator struct {
	maxDepth int
	logger   fileutil.Logger
}

// NewEstimator creates an estimator. maxDepth 0 uses the walker default and
// a nil logger discards diagnostics.
func NewEstimator(maxDepth int, logger fileutil.Logger) *Estimator {
	return &Estimator{maxDepth: maxDepth, logger: logger}
}

// Estimate runs an Estimator with default settings.
func Estimate(ctx context.Context, root string, sample int) (models.EstimateSummary, error) {
	return NewEstimator(0, nil).Estimate(ctx, root, sample)
}

// Estimate counts every file under root and sizes the first sample of them
// in walk order. The estimated total is (sampled size / sampled count) *
// total count, rounded to the nearest byte.
func (e *Estimator) Estimate(ctx context.Context, root string, sample int) (models.EstimateSummary, error) {
	walker, err := fileutil.NewWalker(root, fileutil.WalkOptions{
		Strategy:      models.StrategyOrdered,
		RespectIgnore: false,
		IncludeHidden: true,
		Workers:       1,
		MaxDepth:      e.maxDepth,
	}, e.logger)
	if err != nil {
		return models.EstimateSummary{}, err
	}
	if !walker.Deterministic() {
		return models.EstimateSummary{}, fmt.Errorf("estimator requires a deterministic walk")
	}

	var summary models.EstimateSummary
	hist := newHistogram()

	err = walker.Walk(ctx, func(entry fileutil.Entry) error {
		summary.TotalFiles++
		if summary.SampledFiles >= sample {
			return nil
		}

		summary.SampledFiles++
		summary.SampledSize += entry.Size()

		ext, ok := pattern.Extension(entry.RelPath)
		if !ok || ext == "" {
			ext = NoExtension
		}
		hist.add(ext)
		return nil
	})
	if err != nil {
		return models.EstimateSummary{}, err
	}

	if summary.SampledFiles > 0 {
		avg := float64(summary.SampledSize) / float64(summary.SampledFiles)
		summary.EstimatedTotalSize = uint64(math.Round(avg * float64(summary.TotalFiles)))
	}
	summary.TopExtensions = hist.top(TopExtensionCount)
	return summary, nil
}

// histogram counts extensions and remembers first-seen order for ties.
type histogram struct {
	counts map[string]int
	order  []string
}

func newHistogram() *histogram {
	return &histogram{counts: make(map[string]int)}
}

func (h *histogram) add(ext string) {
	if _, seen := h.counts[ext]; !seen {
		h.order = append(h.order, ext)
	}
	h.counts[ext]++
}

// top returns the n most frequent extensions; equal counts keep first-seen order.
func (h *histogram) top(n int) []models.ExtensionCount {
	result := make([]models.ExtensionCount, 0, len(h.order))
	for _, ext := range h.order {
		result = append(result, models.ExtensionCount{Extension: ext, Count: h.counts[ext]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

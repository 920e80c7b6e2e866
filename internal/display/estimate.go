package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/scout/internal/models"
)

// Compact headers for the estimate summary.
const (
	EstimateHeader  = "total_files,sampled_files,estimated_total_size,sampled_size:"
	ExtensionHeader = "extension,count:"
)

// WriteEstimate renders one EstimateSummary in format.
func WriteEstimate(w io.Writer, format models.OutputFormat, s models.EstimateSummary) error {
	var b strings.Builder

	switch format {
	case models.FormatStructured:
		if s.TopExtensions == nil {
			s.TopExtensions = []models.ExtensionCount{}
		}
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to encode estimate: %w", err)
		}
		b.Write(data)
		b.WriteByte('\n')
	case models.FormatCompact:
		b.WriteString(EstimateHeader + "\n")
		fmt.Fprintf(&b, "\t%d,%d,%d,%d\n", s.TotalFiles, s.SampledFiles, s.EstimatedTotalSize, s.SampledSize)
		b.WriteString(ExtensionHeader + "\n")
		for _, ext := range s.TopExtensions {
			fmt.Fprintf(&b, "\t%s,%d\n", QuoteField(ext.Extension), ext.Count)
		}
	default:
		fmt.Fprintf(&b, "Total files: %d\n", s.TotalFiles)
		fmt.Fprintf(&b, "Sampled files: %d\n", s.SampledFiles)
		fmt.Fprintf(&b, "Estimated total size: %s (%d bytes)\n", HumanSize(s.EstimatedTotalSize), s.EstimatedTotalSize)
		fmt.Fprintf(&b, "Sampled size: %s (%d bytes)\n", HumanSize(s.SampledSize), s.SampledSize)
		if len(s.TopExtensions) > 0 {
			b.WriteString("Top extensions:\n")
			for _, ext := range s.TopExtensions {
				fmt.Fprintf(&b, "  %s %d\n", ext.Extension, ext.Count)
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// HumanSize formats a byte count with a binary unit suffix.
func HumanSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

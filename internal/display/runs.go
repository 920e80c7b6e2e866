package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harrison/scout/internal/models"
)

// RunHeader is the compact header for history rows.
const RunHeader = "id,operation,root,query,format,results,truncated,started_at,duration_ms:"

type runRecord struct {
	ID         string `json:"id"`
	Operation  string `json:"operation"`
	Root       string `json:"root"`
	Query      string `json:"query"`
	Format     string `json:"format"`
	Results    int    `json:"results"`
	Visited    int    `json:"visited"`
	Excluded   int    `json:"excluded"`
	Unreadable int    `json:"unreadable"`
	Truncated  bool   `json:"truncated"`
	StartedAt  string `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
}

// WriteRuns renders recorded runs, newest first as given.
func WriteRuns(w io.Writer, format models.OutputFormat, runs []models.RunSummary) error {
	var b strings.Builder

	switch format {
	case models.FormatStructured:
		for _, r := range runs {
			data, err := json.Marshal(runRecord{
				ID:         r.ID,
				Operation:  r.Operation,
				Root:       r.Root,
				Query:      r.Query,
				Format:     string(r.Format),
				Results:    r.Results,
				Visited:    r.Visited,
				Excluded:   r.Excluded,
				Unreadable: r.Unreadable,
				Truncated:  r.Truncated,
				StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
				DurationMs: r.Duration.Milliseconds(),
			})
			if err != nil {
				return fmt.Errorf("failed to encode run: %w", err)
			}
			b.Write(data)
			b.WriteByte('\n')
		}
	case models.FormatCompact:
		b.WriteString(RunHeader + "\n")
		for _, r := range runs {
			fmt.Fprintf(&b, "\t%s,%s,%s,%s,%s,%d,%t,%s,%d\n",
				QuoteField(r.ID),
				QuoteField(r.Operation),
				QuoteField(r.Root),
				QuoteField(r.Query),
				QuoteField(string(r.Format)),
				r.Results,
				r.Truncated,
				QuoteField(r.StartedAt.UTC().Format(time.RFC3339)),
				r.Duration.Milliseconds(),
			)
		}
	default:
		if len(runs) == 0 {
			b.WriteString("No runs recorded.\n")
			break
		}
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tOPERATION\tRESULTS\tDURATION\tQUERY\tROOT")
		for _, r := range runs {
			results := fmt.Sprintf("%d", r.Results)
			if r.Truncated {
				results += "+"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Operation,
				results,
				r.Duration.Round(time.Millisecond),
				r.Query,
				r.Root,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
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

// Package display renders query results and user-facing notices.
//
// Results go to stdout through an Emitter in one of three formats:
//
//	structured  JSON records: a JSON array in batch mode (one record per
//	            line), JSON Lines when streaming
//	compact     a header naming the fields, then one tab-indented row of
//	            comma-separated fields per record
//	plain       "path size" or "path:line: content"
//
// In batch mode records are buffered and rendered on Close. In streaming
// mode each record is written, and the writer flushed, as soon as it is
// produced; the compact header is written once before the first row.
//
//	em := display.NewEmitter(os.Stdout, display.KindFile, models.FormatCompact, true)
//	stats, err := engine.List(ctx, em.File)
//	...
//	err = em.Close()
//
// # Compact quoting
//
// A compact field containing a comma, colon, double quote or line break is
// wrapped in double quotes and any embedded quote is doubled, so every row
// stays on one logical CSV record. UnquoteField and SplitCompactRow invert
// this exactly.
//
// WriteEstimate and WriteRuns render the single-document outputs of the
// estimate and history commands in the same three formats.
//
// # Warnings
//
// Warning prints a yellow notice to stderr. Color is used only when the
// destination is a terminal.
package display

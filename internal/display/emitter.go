package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/harrison/scout/internal/models"
)

// RecordKind selects which record type an Emitter renders.
type RecordKind int

const (
	KindFile RecordKind = iota // FileRecord
	KindHit                    // SearchHit
)

// Compact headers for each record kind.
const (
	FileHeader = "path,size:"
	HitHeader  = "path,line,content:"
)

type flusher interface {
	Flush() error
}

// Emitter renders records in batch or streaming mode. It is not safe for
// concurrent use; the query engine calls it from a single goroutine.
type Emitter struct {
	w         io.Writer
	kind      RecordKind
	format    models.OutputFormat
	streaming bool

	files      []models.FileRecord
	hits       []models.SearchHit
	count      int
	headerDone bool
	closed     bool
}

// NewEmitter returns an Emitter writing records of kind to w.
func NewEmitter(w io.Writer, kind RecordKind, format models.OutputFormat, streaming bool) *Emitter {
	return &Emitter{w: w, kind: kind, format: format, streaming: streaming}
}

// Count returns the number of records accepted so far.
func (e *Emitter) Count() int {
	return e.count
}

// File accepts one FileRecord.
func (e *Emitter) File(r models.FileRecord) error {
	if e.kind != KindFile {
		return fmt.Errorf("emitter for %s records cannot accept a file record", e.kind)
	}
	e.count++
	if !e.streaming {
		e.files = append(e.files, r)
		return nil
	}
	return e.stream(r)
}

// Hit accepts one SearchHit.
func (e *Emitter) Hit(h models.SearchHit) error {
	if e.kind != KindHit {
		return fmt.Errorf("emitter for %s records cannot accept a search hit", e.kind)
	}
	e.count++
	if !e.streaming {
		e.hits = append(e.hits, h)
		return nil
	}
	return e.stream(h)
}

// Close renders buffered records in batch mode and flushes the writer.
// Calling Close more than once is a no-op.
func (e *Emitter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if !e.streaming {
		if err := e.renderBatch(); err != nil {
			return err
		}
	}
	return e.flush()
}

func (e *Emitter) stream(record any) error {
	var line string
	switch e.format {
	case models.FormatStructured:
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		line = string(data) + "\n"
	case models.FormatCompact:
		if !e.headerDone {
			line = e.header() + "\n"
			e.headerDone = true
		}
		line += "\t" + compactRow(record) + "\n"
	default:
		line = plainRow(record) + "\n"
	}

	if _, err := io.WriteString(e.w, line); err != nil {
		return err
	}
	return e.flush()
}

func (e *Emitter) renderBatch() error {
	records := e.records()

	var out []byte
	switch e.format {
	case models.FormatStructured:
		if len(records) == 0 {
			out = []byte("[]\n")
			break
		}
		out = append(out, "[\n"...)
		for i, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
			out = append(out, data...)
			if i < len(records)-1 {
				out = append(out, ',')
			}
			out = append(out, '\n')
		}
		out = append(out, "]\n"...)
	case models.FormatCompact:
		out = append(out, e.header()...)
		out = append(out, '\n')
		for _, r := range records {
			out = append(out, '\t')
			out = append(out, compactRow(r)...)
			out = append(out, '\n')
		}
	default:
		for _, r := range records {
			out = append(out, plainRow(r)...)
			out = append(out, '\n')
		}
	}

	_, err := e.w.Write(out)
	return err
}

func (e *Emitter) records() []any {
	var records []any
	if e.kind == KindFile {
		for _, r := range e.files {
			records = append(records, r)
		}
		return records
	}
	for _, h := range e.hits {
		records = append(records, h)
	}
	return records
}

func (e *Emitter) header() string {
	if e.kind == KindHit {
		return HitHeader
	}
	return FileHeader
}

func (e *Emitter) flush() error {
	if f, ok := e.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func compactRow(record any) string {
	switch r := record.(type) {
	case models.FileRecord:
		return QuoteField(r.Path) + "," + strconv.FormatUint(r.Size, 10)
	case models.SearchHit:
		return QuoteField(r.Path) + "," + strconv.Itoa(r.Line) + "," + QuoteField(r.Content)
	}
	return ""
}

func plainRow(record any) string {
	switch r := record.(type) {
	case models.FileRecord:
		return r.Path + " " + strconv.FormatUint(r.Size, 10)
	case models.SearchHit:
		return fmt.Sprintf("%s:%d: %s", r.Path, r.Line, r.Content)
	}
	return ""
}

func (k RecordKind) String() string {
	if k == KindHit {
		return "hit"
	}
	return "file"
}

package filelock

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Output is a locked result file opened for one run. In batch mode bytes are
// buffered and written atomically on Close. In streaming mode the target is
// truncated on the first write (or on Close if nothing was written) and every
// Flush pushes buffered records to disk, so a run aborted before producing
// output leaves the previous file intact.
//
// The lock is held from Open until Close or Abort.
type Output struct {
	path      string
	streaming bool
	lock      *FileLock
	waited    bool

	file *os.File
	bw   *bufio.Writer
	buf  bytes.Buffer
	done bool
}

// Open acquires the lock for path and prepares it for writing. When another
// process holds the lock, Open blocks until it is released.
func Open(path string, streaming bool) (*Output, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	lock := NewFileLock(path + LockSuffix)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		if err := lock.Lock(); err != nil {
			return nil, err
		}
	}

	return &Output{path: path, streaming: streaming, lock: lock, waited: !acquired}, nil
}

// Waited reports whether Open had to wait for another writer.
func (o *Output) Waited() bool {
	return o.waited
}

// openStream truncates the target and starts the buffered writer.
func (o *Output) openStream() error {
	if o.file != nil {
		return nil
	}
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	o.file = f
	o.bw = bufio.NewWriter(f)
	return nil
}

// Path returns the target path.
func (o *Output) Path() string {
	return o.path
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	if o.done {
		return 0, os.ErrClosed
	}
	if o.streaming {
		if err := o.openStream(); err != nil {
			return 0, err
		}
		return o.bw.Write(p)
	}
	return o.buf.Write(p)
}

// Flush pushes buffered stream output to the file. It is a no-op in batch
// mode, where nothing reaches the file before Close.
func (o *Output) Flush() error {
	if o.done || !o.streaming || o.file == nil {
		return nil
	}
	return o.bw.Flush()
}

// Close finishes the file and releases the lock.
func (o *Output) Close() error {
	if o.done {
		return nil
	}
	o.done = true
	defer o.lock.Unlock()

	if !o.streaming {
		return AtomicWrite(o.path, o.buf.Bytes())
	}

	if err := o.openStream(); err != nil {
		return err
	}
	if err := o.bw.Flush(); err != nil {
		o.file.Close()
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	if err := o.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// Abort releases the lock without committing batch output. A batch target,
// or a streaming target nothing was written to, is left untouched; otherwise
// the streaming target keeps whatever was already flushed.
func (o *Output) Abort() error {
	if o.done {
		return nil
	}
	o.done = true
	defer o.lock.Unlock()

	if o.streaming && o.file != nil {
		o.bw.Flush()
		return o.file.Close()
	}
	return nil
}

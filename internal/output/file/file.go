package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithRunID tags every report line with the given run id.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}

// Output appends the run report to a file as NDJSON, one entry per line.
type Output struct {
	w       *bufio.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	runID   string
	bufSize int
}

// New opens (or creates) path for appending.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{
		path:    path,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	return o, nil
}

func (o *Output) WriteOutcome(_ context.Context, outcome model.FileOutcome) error {
	return o.write(output.OutcomeEntry(o.runID, outcome))
}

func (o *Output) WriteValue(_ context.Context, v model.FileValue) error {
	return o.write(output.ValueEntry(o.runID, v))
}

func (o *Output) WriteNoFiles(_ context.Context, dir string) error {
	return o.write(output.NoFilesEntry(o.runID, dir))
}

// write JSON-encodes the entry and appends it as a line to the file.
func (o *Output) write(e output.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

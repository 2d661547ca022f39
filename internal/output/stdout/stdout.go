package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output"
)

// Output writes operator-facing report lines to stdout.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a stdout Output. A nil writer means os.Stdout.
func New(w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w}
}

func (o *Output) WriteOutcome(_ context.Context, outcome model.FileOutcome) error {
	return o.println(output.FormatOutcome(outcome)...)
}

func (o *Output) WriteValue(_ context.Context, v model.FileValue) error {
	return o.println(output.FormatValue(v))
}

func (o *Output) WriteNoFiles(_ context.Context, dir string) error {
	return o.println(output.FormatNoFiles(dir))
}

func (o *Output) Close() error {
	return nil
}

func (o *Output) println(lines ...string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, l := range lines {
		if _, err := fmt.Fprintln(o.w, l); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
	}
	return nil
}

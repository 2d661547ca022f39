package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output"
)

// Multi fans out report entries to multiple output.Output implementations.
// Each call delivers to every wrapped output sequentially. If one output
// fails, the remaining outputs still receive the entry.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

func (m *Multi) WriteOutcome(ctx context.Context, o model.FileOutcome) error {
	return m.each(func(out output.Output) error { return out.WriteOutcome(ctx, o) })
}

func (m *Multi) WriteValue(ctx context.Context, v model.FileValue) error {
	return m.each(func(out output.Output) error { return out.WriteValue(ctx, v) })
}

func (m *Multi) WriteNoFiles(ctx context.Context, dir string) error {
	return m.each(func(out output.Output) error { return out.WriteNoFiles(ctx, dir) })
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	return m.each(output.Output.Close)
}

func (m *Multi) each(fn func(output.Output) error) error {
	var errs []error
	for _, o := range m.outputs {
		if err := fn(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

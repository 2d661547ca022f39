package output

import (
	"context"

	"github.com/crimson-sun/ctngresults/internal/model"
)

// Output defines the interface for run report destinations.
type Output interface {
	WriteOutcome(ctx context.Context, o model.FileOutcome) error
	WriteValue(ctx context.Context, v model.FileValue) error
	WriteNoFiles(ctx context.Context, dir string) error
	Close() error
}

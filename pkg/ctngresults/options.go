package ctngresults

import (
	"io"

	"go.uber.org/zap"

	"github.com/crimson-sun/ctngresults/internal/repair"
)

type options struct {
	workers    int
	repairMode string
	indent     string
	out        io.Writer
	logger     *zap.Logger
	runID      string
}

// Option configures Clean and FilterFile.
type Option func(*options)

// WithWorkers sets how many files each pass handles at once. Default: 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithRepairMode selects "lexical" (default) or "stream" array repair.
func WithRepairMode(mode string) Option {
	return func(o *options) {
		o.repairMode = mode
	}
}

// WithIndent sets the indent used when rewriting files. Default: two spaces.
func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

// WithOutput writes the operator report lines ("Processed ...", "<name>: <value>")
// to w. By default nothing is printed.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets a zap logger for per-file and per-record warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRunID tags the report with a caller-supplied id.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func defaultOptions() options {
	return options{
		workers:    1,
		repairMode: repair.ModeLexical,
		indent:     "  ",
		out:        io.Discard,
		logger:     zap.NewNop(),
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/ctngresults/internal/metrics"
	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output"
)

const resultExt = ".json"

// ErrDirNotFound is returned when the target directory does not exist.
var ErrDirNotFound = errors.New("directory does not exist")

// Filterer rewrites one result file and reports what it kept.
type Filterer interface {
	File(path string) model.FileOutcome
}

// Aggregator reduces one cleaned result file to a single value.
type Aggregator interface {
	File(path string) (float64, error)
}

// AggregatorFunc adapts a plain function to Aggregator.
type AggregatorFunc func(path string) (float64, error)

func (f AggregatorFunc) File(path string) (float64, error) { return f(path) }

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds how many files each pass handles at once. Default: 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMetrics records run counters on h.
func WithMetrics(h *metrics.Handler) Option {
	return func(p *Pipeline) { p.metrics = h }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRunID tags the report with a run id.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// Pipeline runs the filter pass over every result file in a directory,
// then the aggregate pass over the same files.
type Pipeline struct {
	filter     Filterer
	aggregator Aggregator
	output     output.Output
	metrics    *metrics.Handler
	logger     *zap.Logger
	workers    int
	runID      string
}

// New creates a Pipeline from the given components.
func New(f Filterer, agg Aggregator, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		filter:     f,
		aggregator: agg,
		output:     out,
		logger:     zap.NewNop(),
		workers:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ListResultFiles returns the paths of files in dir whose name ends in
// ".json" (any case), sorted by name. Subdirectories are ignored.
func ListResultFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("pipeline: %w: %s", ErrDirNotFound, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), resultExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes dir. Only setup failures (missing directory, cancellation,
// output errors) are returned; per-file problems are part of the report.
func (p *Pipeline) Run(ctx context.Context, dir string) (model.Report, error) {
	report := model.Report{RunID: p.runID, Dir: dir}

	paths, err := ListResultFiles(dir)
	if err != nil {
		return report, err
	}
	log := p.logger.With(zap.String("dir", dir))

	if len(paths) == 0 {
		report.NoFiles = true
		log.Warn("no result files found")
		if err := p.output.WriteNoFiles(ctx, dir); err != nil {
			return report, fmt.Errorf("pipeline output: %w", err)
		}
		return report, nil
	}

	outcomes := make([]model.FileOutcome, len(paths))
	if err := p.each(ctx, paths, func(i int, path string) {
		outcomes[i] = p.filter.File(path)
	}); err != nil {
		return report, fmt.Errorf("pipeline filter: %w", err)
	}
	report.Outcomes = outcomes
	for _, o := range outcomes {
		p.recordOutcome(log, o)
		if err := p.output.WriteOutcome(ctx, o); err != nil {
			return report, fmt.Errorf("pipeline output: %w", err)
		}
	}

	// Every file is filtered before any file is aggregated.
	values := make([]model.FileValue, len(paths))
	if err := p.each(ctx, paths, func(i int, path string) {
		v, err := p.aggregator.File(path)
		values[i] = model.FileValue{Path: path, Name: filepath.Base(path), Value: v, Err: err}
	}); err != nil {
		return report, fmt.Errorf("pipeline aggregate: %w", err)
	}
	report.Values = values
	for _, v := range values {
		if v.Err != nil {
			log.Debug("aggregate defaulted to zero", zap.String("file", v.Name), zap.Error(v.Err))
		}
		if p.metrics != nil {
			p.metrics.SetLoggerConvergeMax(v.Name, v.Value)
		}
		if err := p.output.WriteValue(ctx, v); err != nil {
			return report, fmt.Errorf("pipeline output: %w", err)
		}
	}

	log.Info("run complete",
		zap.Int("files", len(paths)),
		zap.Int("processed", report.Processed()),
		zap.Int("skipped", report.Skipped()))
	return report, nil
}

// each applies fn to every path with at most p.workers in flight and
// returns once all calls have finished.
func (p *Pipeline) each(ctx context.Context, paths []string, fn func(i int, path string)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pipeline) recordOutcome(log *zap.Logger, o model.FileOutcome) {
	if o.Status == model.StatusSkipped {
		log.Warn("skipping result file",
			zap.String("file", o.Name), zap.String("reason", o.Reason), zap.Error(o.Err))
		if p.metrics != nil {
			p.metrics.IncFilesSkipped(o.Reason)
		}
		return
	}
	log.Info("filtered result file",
		zap.String("file", o.Name), zap.Int("kept", o.Kept), zap.Int("total", o.Total))
	if p.metrics != nil {
		p.metrics.IncFilesProcessed()
		malformed := len(o.Malformed)
		p.metrics.AddRecords(o.Kept, o.Total-o.Kept-malformed, malformed)
	}
}

package ctngresults

import (
	"context"
	"fmt"

	"github.com/crimson-sun/ctngresults/internal/aggregate"
	"github.com/crimson-sun/ctngresults/internal/filter"
	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/output/stdout"
	"github.com/crimson-sun/ctngresults/internal/pipeline"
	"github.com/crimson-sun/ctngresults/internal/repair"
)

// ErrDirNotFound is returned by Clean when dir does not exist.
var ErrDirNotFound = pipeline.ErrDirNotFound

// Clean filters every .json file in dir in place, keeping records whose
// monitor_id is "M<n>" with n <= threshold, then reports each file's
// largest Logger converge_time. Per-file failures are reported in the
// result; only a missing directory or cancellation returns an error.
func Clean(ctx context.Context, dir string, threshold int64, opts ...Option) (Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	flt, err := newFilter(threshold, o)
	if err != nil {
		return Report{Dir: dir}, err
	}
	p := pipeline.New(flt, pipeline.AggregatorFunc(aggregate.File), stdout.New(o.out),
		pipeline.WithWorkers(o.workers),
		pipeline.WithLogger(o.logger),
		pipeline.WithRunID(o.runID),
	)

	rep, err := p.Run(ctx, dir)
	if err != nil {
		return reportFromModel(rep), fmt.Errorf("ctngresults: %w", err)
	}
	return reportFromModel(rep), nil
}

// FilterFile repairs, filters and rewrites a single file.
func FilterFile(path string, threshold int64, opts ...Option) (FileResult, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	flt, err := newFilter(threshold, o)
	if err != nil {
		return FileResult{Path: path}, err
	}
	return resultFromOutcome(flt.File(path)), nil
}

// MaxLoggerConvergence returns the largest Logger converge_time in a
// cleaned file. A file that cannot be read or is not a JSON list yields 0
// together with the cause.
func MaxLoggerConvergence(path string) (float64, error) {
	return aggregate.File(path)
}

// Repair joins back-to-back JSON arrays by replacing every "][" with ",".
// It does not understand JSON strings; "][" inside a string is rewritten too.
func Repair(text string) string {
	fixed, _ := repair.Lexical{}.Repair(text)
	return fixed
}

func newFilter(threshold int64, o options) (*filter.Filter, error) {
	r, err := repair.Get(o.repairMode)
	if err != nil {
		return nil, fmt.Errorf("ctngresults: %w", err)
	}
	return filter.New(threshold,
		filter.WithRepairer(r),
		filter.WithIndent(o.indent),
		filter.WithLogger(o.logger),
	), nil
}

func resultFromOutcome(o model.FileOutcome) FileResult {
	return FileResult{
		Name:      o.Name,
		Path:      o.Path,
		Processed: o.Status == model.StatusProcessed,
		Kept:      o.Kept,
		Total:     o.Total,
		Malformed: o.Malformed,
		Skip:      o.Reason,
		Err:       o.Err,
	}
}

// reportFromModel joins the two passes by file position; both passes
// cover the same sorted file list.
func reportFromModel(r model.Report) Report {
	rep := Report{RunID: r.RunID, Dir: r.Dir, NoFiles: r.NoFiles}
	for i, o := range r.Outcomes {
		fr := resultFromOutcome(o)
		if i < len(r.Values) {
			fr.MaxConvergeTime = r.Values[i].Value
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

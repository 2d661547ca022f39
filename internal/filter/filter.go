// Package filter drops result records produced by monitors above an
// identifier threshold and rewrites each file in place.
package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/crimson-sun/ctngresults/internal/model"
	"github.com/crimson-sun/ctngresults/internal/repair"
)

const defaultIndent = "  "

var (
	// ErrSyntax wraps a JSON decode failure after repair.
	ErrSyntax = errors.New("invalid JSON")
	// ErrNotList means the top-level JSON value is not an array.
	ErrNotList = errors.New("top-level JSON value is not a list")
	// ErrEncoding means the file is not valid UTF-8 text.
	ErrEncoding = errors.New("file is not valid UTF-8")
)

// Option configures a Filter.
type Option func(*Filter)

// WithRepairer sets the repair strategy. Default: repair.Lexical.
func WithRepairer(r repair.Repairer) Option {
	return func(f *Filter) { f.repairer = r }
}

// WithIndent sets the indent used when rewriting files. Default: two spaces.
func WithIndent(indent string) Option {
	return func(f *Filter) { f.indent = indent }
}

// WithLogger sets the logger for per-record warnings.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) { f.logger = l }
}

// Filter keeps records whose monitor_id is "M<n>" with n <= Threshold.
type Filter struct {
	threshold int64
	repairer  repair.Repairer
	indent    string
	logger    *zap.Logger
}

// New creates a Filter for the given monitor identifier threshold.
func New(threshold int64, opts ...Option) *Filter {
	f := &Filter{
		threshold: threshold,
		repairer:  repair.Lexical{},
		indent:    defaultIndent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Threshold returns the configured monitor identifier threshold.
func (f *Filter) Threshold() int64 { return f.threshold }

// Keep reports whether a single record survives the threshold. malformed is
// true when monitor_id has the "M" prefix but no integer suffix.
func (f *Filter) Keep(rec model.Record) (keep, malformed bool) {
	id, _, status := rec.MonitorID()
	switch status {
	case model.MonitorIDValid:
		return id <= f.threshold, false
	case model.MonitorIDMalformed:
		return false, true
	default:
		return false, false
	}
}

// Apply filters records, preserving their relative order. It returns the
// kept records and the monitor_id values that failed to parse.
func (f *Filter) Apply(records []model.Record) (kept []model.Record, malformed []string) {
	kept = make([]model.Record, 0, len(records))
	for _, rec := range records {
		ok, bad := f.Keep(rec)
		if bad {
			_, raw, _ := rec.MonitorID()
			malformed = append(malformed, raw)
			continue
		}
		if ok {
			kept = append(kept, rec)
		}
	}
	return kept, malformed
}

// File repairs, parses, filters and rewrites one result file. The returned
// outcome is always populated; skipped files are left unmodified.
func (f *Filter) File(path string) model.FileOutcome {
	out := model.FileOutcome{Path: path, Name: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		return skipped(out, model.ReasonIO, fmt.Errorf("filter: read %s: %w", path, err))
	}
	if !utf8.Valid(data) {
		return skipped(out, model.ReasonEncoding, fmt.Errorf("filter: %s: %w", out.Name, ErrEncoding))
	}

	records, err := Parse(f.repairer, string(data))
	if err != nil {
		reason := model.ReasonIO
		switch {
		case errors.Is(err, ErrNotList):
			reason = model.ReasonNotList
		case errors.Is(err, ErrSyntax):
			reason = model.ReasonInvalidJSON
		}
		return skipped(out, reason, err)
	}

	kept, malformed := f.Apply(records)
	for _, id := range malformed {
		f.logger.Warn("malformed monitor_id, dropping entry",
			zap.String("file", out.Name), zap.String("monitor_id", id))
	}

	if err := Write(path, kept, f.indent); err != nil {
		return skipped(out, model.ReasonIO, err)
	}

	out.Status = model.StatusProcessed
	out.Kept = len(kept)
	out.Total = len(records)
	out.Malformed = malformed
	return out
}

func skipped(out model.FileOutcome, reason string, err error) model.FileOutcome {
	out.Status = model.StatusSkipped
	out.Reason = reason
	out.Err = err
	return out
}

// Parse repairs text and decodes it into records.
func Parse(r repair.Repairer, text string) ([]model.Record, error) {
	fixed, err := r.Repair(text)
	if err != nil {
		return nil, fmt.Errorf("filter: repair: %w", err)
	}
	return Decode([]byte(fixed))
}

// Decode parses a JSON array of records. Input that is not UTF-8 yields
// ErrEncoding, a valid non-array value ErrNotList, and any syntax problem
// ErrSyntax.
func Decode(data []byte) ([]model.Record, error) {
	if !utf8.Valid(data) {
		return nil, ErrEncoding
	}
	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if b := bytes.TrimSpace(top); len(b) == 0 || b[0] != '[' {
		return nil, ErrNotList
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(top, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	records := make([]model.Record, len(elems))
	for i, e := range elems {
		records[i] = model.NewRecord(e)
	}
	return records, nil
}

// Write replaces the file with a pretty-printed array of records.
func Write(path string, records []model.Record, indent string) error {
	raws := make([]json.RawMessage, len(records))
	for i, r := range records {
		raws[i] = r.Raw
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(raws); err != nil {
		return fmt.Errorf("filter: encode %s: %w", path, err)
	}

	info, err := os.Stat(path)
	perm := os.FileMode(0644)
	if err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("filter: write %s: %w", path, err)
	}
	return nil
}

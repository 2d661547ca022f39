package output

import (
	"fmt"

	"github.com/crimson-sun/ctngresults/internal/model"
)

// FormatOutcome returns the operator-facing lines for one filter outcome:
// one warning per malformed monitor_id followed by the file summary.
func FormatOutcome(o model.FileOutcome) []string {
	if o.Status == model.StatusSkipped {
		return []string{formatSkip(o)}
	}
	lines := make([]string, 0, len(o.Malformed)+1)
	for _, id := range o.Malformed {
		lines = append(lines, fmt.Sprintf("Warning: '%s' is malformed. Skipping entry.", id))
	}
	return append(lines, fmt.Sprintf("Processed '%s': Kept %d out of %d entries.", o.Name, o.Kept, o.Total))
}

func formatSkip(o model.FileOutcome) string {
	switch o.Reason {
	case model.ReasonNotList:
		return fmt.Sprintf("Warning: '%s' is not a top-level JSON list. Skipping.", o.Name)
	case model.ReasonInvalidJSON:
		return fmt.Sprintf("Error: Invalid JSON in '%s'. Skipping. (%v)", o.Name, o.Err)
	default:
		return fmt.Sprintf("Unexpected error processing '%s': %v", o.Name, o.Err)
	}
}

// FormatValue returns the aggregate line, with three decimals.
func FormatValue(v model.FileValue) string {
	return fmt.Sprintf("%s: %.3f", v.Name, v.Value)
}

// FormatNoFiles returns the line reported for a directory without result files.
func FormatNoFiles(dir string) string {
	return fmt.Sprintf("No .json files found in '%s'.", dir)
}

// Entry is one NDJSON report line.
type Entry struct {
	Kind      string   `json:"kind"` // "outcome", "value" or "no_files"
	RunID     string   `json:"run_id,omitempty"`
	Dir       string   `json:"dir,omitempty"`
	File      string   `json:"file,omitempty"`
	Status    string   `json:"status,omitempty"`
	Kept      *int     `json:"kept,omitempty"`
	Total     *int     `json:"total,omitempty"`
	Malformed []string `json:"malformed,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
	Value     *float64 `json:"value,omitempty"`
}

// OutcomeEntry converts a filter outcome to a report entry.
func OutcomeEntry(runID string, o model.FileOutcome) Entry {
	e := Entry{
		Kind:      "outcome",
		RunID:     runID,
		File:      o.Name,
		Status:    string(o.Status),
		Malformed: o.Malformed,
		Reason:    o.Reason,
	}
	if o.Status == model.StatusProcessed {
		kept, total := o.Kept, o.Total
		e.Kept, e.Total = &kept, &total
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	return e
}

// ValueEntry converts an aggregate value to a report entry.
func ValueEntry(runID string, v model.FileValue) Entry {
	val := v.Value
	e := Entry{Kind: "value", RunID: runID, File: v.Name, Value: &val}
	if v.Err != nil {
		e.Error = v.Err.Error()
	}
	return e
}

// NoFilesEntry reports a directory without result files.
func NoFilesEntry(runID, dir string) Entry {
	return Entry{Kind: "no_files", RunID: runID, Dir: dir}
}

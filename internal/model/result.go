package model

// Status is the outcome of filtering one result file.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
)

// Skip reasons.
const (
	ReasonInvalidJSON = "invalid_json"
	ReasonNotList     = "not_list"
	ReasonIO          = "io_error"
	ReasonEncoding    = "invalid_utf8"
)

// FileOutcome is the per-file result of the filter pass.
type FileOutcome struct {
	Path      string
	Name      string
	Status    Status
	Kept      int
	Total     int
	Malformed []string // monitor_id values that could not be parsed
	Reason    string   // set when Status is StatusSkipped
	Err       error
}

// FileValue is the per-file result of the aggregate pass.
type FileValue struct {
	Path  string
	Name  string
	Value float64 // maximum Logger converge_time, 0 when none
	Err   error   // advisory only; Value is still reported
}

// Report summarizes one directory run.
type Report struct {
	RunID    string
	Dir      string
	Outcomes []FileOutcome
	Values   []FileValue
	NoFiles  bool
}

// Processed returns the number of files rewritten by the filter pass.
func (r Report) Processed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusProcessed {
			n++
		}
	}
	return n
}

// Skipped returns the number of files left unmodified by the filter pass.
func (r Report) Skipped() int {
	return len(r.Outcomes) - r.Processed()
}

package ctngresults

// FileResult is the outcome of both passes for one result file.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type FileResult struct {
	Name string `json:"name"`
	Path string `json:"path"`

	// Processed is false when the file was skipped and left unmodified.
	Processed bool     `json:"processed"`
	Kept      int      `json:"kept"`
	Total     int      `json:"total"`
	Malformed []string `json:"malformed,omitempty"` // monitor_id values without an integer suffix

	// Skip is invalid_json, not_list or io_error; Err holds the cause.
	Skip string `json:"skip,omitempty"`
	Err  error  `json:"-"`

	// MaxConvergeTime is the largest Logger converge_time after filtering, 0 when none.
	MaxConvergeTime float64 `json:"max_converge_time"`
}

// Report summarizes one Clean run.
type Report struct {
	RunID   string       `json:"run_id,omitempty"`
	Dir     string       `json:"dir"`
	Files   []FileResult `json:"files"`
	NoFiles bool         `json:"no_files"`
}

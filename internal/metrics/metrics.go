package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Handler holds the counters for one run. Each Handler owns its registry so
// several runs in one process do not collide.
type Handler struct {
	Registry *prometheus.Registry

	FilesProcessed    prometheus.Counter
	FilesSkipped      *prometheus.CounterVec
	Records           *prometheus.CounterVec
	LoggerConvergeMax *prometheus.GaugeVec
}

// New creates a Handler with a fresh registry.
func New() *Handler {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Handler{
		Registry: reg,
		FilesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "ctng_files_processed_total",
			Help: "The total number of result files rewritten by the filter pass",
		}),
		FilesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ctng_files_skipped_total",
			Help: "The total number of result files left unmodified",
		}, []string{"reason"}),
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ctng_records_total",
			Help: "The total number of records seen by the filter pass",
		}, []string{"result"}),
		LoggerConvergeMax: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ctng_logger_converge_seconds_max",
			Help: "The largest Logger converge_time per result file",
		}, []string{"file"}),
	}
}

// IncFilesProcessed increments the processed files counter
func (h *Handler) IncFilesProcessed() {
	h.FilesProcessed.Inc()
}

// IncFilesSkipped increments the skipped files counter
func (h *Handler) IncFilesSkipped(reason string) {
	h.FilesSkipped.WithLabelValues(reason).Inc()
}

// AddRecords records kept, dropped and malformed record counts for one file.
func (h *Handler) AddRecords(kept, dropped, malformed int) {
	h.Records.WithLabelValues("kept").Add(float64(kept))
	h.Records.WithLabelValues("dropped").Add(float64(dropped))
	h.Records.WithLabelValues("malformed").Add(float64(malformed))
}

// SetLoggerConvergeMax sets the per-file convergence gauge
func (h *Handler) SetLoggerConvergeMax(file string, seconds float64) {
	h.LoggerConvergeMax.WithLabelValues(file).Set(seconds)
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (h *Handler) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, h.Registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsHandler(t *testing.T) {
	h := New()

	h.IncFilesProcessed()
	h.IncFilesProcessed()
	h.IncFilesSkipped("not_list")
	h.AddRecords(3, 2, 1)
	h.AddRecords(1, 0, 0)
	h.SetLoggerConvergeMax("a.json", 1.5)

	if got := testutil.ToFloat64(h.FilesProcessed); got != 2 {
		t.Errorf("files processed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.FilesSkipped.WithLabelValues("not_list")); got != 1 {
		t.Errorf("files skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.Records.WithLabelValues("kept")); got != 4 {
		t.Errorf("records kept = %v, want 4", got)
	}
	if got := testutil.ToFloat64(h.LoggerConvergeMax.WithLabelValues("a.json")); got != 1.5 {
		t.Errorf("converge max = %v, want 1.5", got)
	}
}

func TestHandlersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.IncFilesProcessed()
	if got := testutil.ToFloat64(b.FilesProcessed); got != 0 {
		t.Fatalf("second handler saw %v processed files, want 0", got)
	}
}

func TestGatherTypes(t *testing.T) {
	h := New()
	h.IncFilesProcessed()
	h.IncFilesSkipped("io_error")
	h.AddRecords(1, 0, 0)
	h.SetLoggerConvergeMax("a.json", 2)

	families, err := h.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	want := map[string]dto.MetricType{
		"ctng_files_processed_total":       dto.MetricType_COUNTER,
		"ctng_files_skipped_total":         dto.MetricType_COUNTER,
		"ctng_records_total":               dto.MetricType_COUNTER,
		"ctng_logger_converge_seconds_max": dto.MetricType_GAUGE,
	}
	for _, mf := range families {
		typ, ok := want[mf.GetName()]
		if !ok {
			continue
		}
		if mf.GetType() != typ {
			t.Errorf("%s type = %v, want %v", mf.GetName(), mf.GetType(), typ)
		}
		delete(want, mf.GetName())
	}
	if len(want) != 0 {
		t.Errorf("families not gathered: %v", want)
	}
}

func TestWriteTextfile(t *testing.T) {
	h := New()
	h.IncFilesProcessed()
	path := filepath.Join(t.TempDir(), "ctng.prom")

	if err := h.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "ctng_files_processed_total 1") {
		t.Errorf("textfile missing processed counter:\n%s", data)
	}
}

func TestWriteTextfileBadDir(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		got := ParseLevel(tt.input)
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "Info", "warning", "ERROR"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"trace", "fatal", "loud"} {
		if ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = true, want false", s)
		}
	}
}

func TestNew(t *testing.T) {
	for _, jsonOut := range []bool{true, false} {
		logger, err := New(zapcore.WarnLevel, jsonOut)
		if err != nil {
			t.Fatalf("New(json=%v): %v", jsonOut, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("json=%v: info enabled at warn level", jsonOut)
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("json=%v: error disabled at warn level", jsonOut)
		}
	}
}

func TestJSONEncoderFields(t *testing.T) {
	var buf bytes.Buffer
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	logger := zap.New(zapcore.NewCore(enc, zapcore.AddSync(&buf), zapcore.InfoLevel))

	logger.Info("test message", zap.String("file", "a.json"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v\noutput: %s", err, buf.String())
	}
	if m["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %q", m["msg"])
	}
	if m["file"] != "a.json" {
		t.Errorf("expected file 'a.json', got %q", m["file"])
	}
}

func TestConsoleEncoderFields(t *testing.T) {
	var buf bytes.Buffer
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	logger := zap.New(zapcore.NewCore(enc, zapcore.AddSync(&buf), zapcore.InfoLevel))

	logger.Warn("skipping file", zap.String("reason", "not_list"))

	out := buf.String()
	if !strings.Contains(out, "skipping file") {
		t.Errorf("expected console output containing msg, got: %s", out)
	}
	if !strings.Contains(out, `"reason": "not_list"`) {
		t.Errorf("expected console output containing reason field, got: %s", out)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/ctngresults/internal/logging"
	"github.com/crimson-sun/ctngresults/internal/repair"
)

// Version is the ctngresults release version.
const Version = "0.3.0"

// Config holds all ctngresults configuration.
type Config struct {
	Dir       string `yaml:"-"`
	Threshold int64  `yaml:"-"`

	Log     LogConfig     `yaml:"log"`
	Process ProcessConfig `yaml:"process"`
	Output  OutputConfig  `yaml:"output"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ProcessConfig holds filter and driver settings.
type ProcessConfig struct {
	Workers int    `yaml:"workers"`
	Repair  string `yaml:"repair"` // "lexical" or "stream"
	Indent  string `yaml:"indent"`
}

// OutputConfig holds report destinations beyond stdout.
type OutputConfig struct {
	ReportPath  string `yaml:"report_path"`
	MetricsPath string `yaml:"metrics_path"`
	WebhookURL  string `yaml:"webhook_url"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Log: LogConfig{
			Level: getenv("CTNG_LOG_LEVEL", "info"),
			JSON:  getenvBool("CTNG_LOG_JSON", false),
		},
		Process: ProcessConfig{
			Workers: getenvInt("CTNG_WORKERS", 1),
			Repair:  getenv("CTNG_REPAIR", repair.ModeLexical),
			Indent:  "  ",
		},
		Output: OutputConfig{
			ReportPath:  os.Getenv("CTNG_REPORT_PATH"),
			MetricsPath: os.Getenv("CTNG_METRICS_PATH"),
			WebhookURL:  os.Getenv("CTNG_WEBHOOK_URL"),
		},
	}
}

// LoadFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseThreshold parses the monitor identifier threshold argument as a
// base-10 integer. Surrounding whitespace is ignored.
func ParseThreshold(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("the threshold must be an integer: %q", s)
	}
	return n, nil
}

// Validate checks all fields and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if c.Dir == "" {
		errs = append(errs, errors.New("folder name must not be empty"))
	}
	if c.Process.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Process.Workers))
	}
	if _, err := repair.Get(c.Process.Repair); err != nil {
		errs = append(errs, fmt.Errorf("repair mode must be one of %s, got %q",
			strings.Join(repair.Modes(), ", "), c.Process.Repair))
	}
	if u := c.Output.WebhookURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs = append(errs, fmt.Errorf("webhook url must be http or https, got %q", u))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

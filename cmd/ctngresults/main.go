package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/ctngresults/internal/aggregate"
	"github.com/crimson-sun/ctngresults/internal/config"
	"github.com/crimson-sun/ctngresults/internal/filter"
	"github.com/crimson-sun/ctngresults/internal/logging"
	"github.com/crimson-sun/ctngresults/internal/metrics"
	"github.com/crimson-sun/ctngresults/internal/output"
	"github.com/crimson-sun/ctngresults/internal/output/async"
	"github.com/crimson-sun/ctngresults/internal/output/file"
	"github.com/crimson-sun/ctngresults/internal/output/multi"
	"github.com/crimson-sun/ctngresults/internal/output/stdout"
	"github.com/crimson-sun/ctngresults/internal/output/webhook"
	"github.com/crimson-sun/ctngresults/internal/pipeline"
	"github.com/crimson-sun/ctngresults/internal/repair"
)

// flags holds command-line overrides for config values.
type flags struct {
	configPath  string
	logLevel    string
	workers     int
	repairMode  string
	reportPath  string
	metricsPath string
	webhookURL  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "ctngresults [flags] <folder_name> <monitor_id_threshold>",
		Short: "Repair, filter and summarize CTng experiment result files",
		Long: `Repairs every .json result file in a folder (merging back-to-back JSON
arrays), drops records whose monitor_id is above the threshold, rewrites
each file in place, then prints the largest Logger converge_time per file.`,
		Version:       config.Version,
		Args:          usageArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	fs := cmd.Flags()
	// Flags go before the folder; anything after it, including a
	// negative threshold such as -5, is positional.
	fs.SetInterspersed(false)
	fs.StringVar(&f.configPath, "config", "", "optional YAML config file")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.IntVar(&f.workers, "workers", 0, "files handled at once within each pass")
	fs.StringVar(&f.repairMode, "repair", "", "repair strategy: lexical or stream")
	fs.StringVar(&f.reportPath, "report", "", "append an NDJSON run report to this file")
	fs.StringVar(&f.metricsPath, "metrics-file", "", "write prometheus metrics to this textfile")
	fs.StringVar(&f.webhookURL, "webhook", "", "POST the run report to this collector URL")
	return cmd
}

func usageArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <folder_name> <monitor_id_threshold>", cmd.Root().Name())
	}
	return nil
}

func run(cmd *cobra.Command, args []string, f flags) error {
	cfg, err := loadConfig(cmd, args, f)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.JSON)
	if err != nil {
		return err
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	repairer, err := repair.Get(cfg.Process.Repair)
	if err != nil {
		return err
	}

	out, err := buildOutput(cmd, cfg, runID, logger)
	if err != nil {
		return err
	}
	defer out.Close()

	var h *metrics.Handler
	if cfg.Output.MetricsPath != "" {
		h = metrics.New()
	}

	flt := filter.New(cfg.Threshold,
		filter.WithRepairer(repairer),
		filter.WithIndent(cfg.Process.Indent),
		filter.WithLogger(logger),
	)
	p := pipeline.New(flt, pipeline.AggregatorFunc(aggregate.File), out,
		pipeline.WithWorkers(cfg.Process.Workers),
		pipeline.WithMetrics(h),
		pipeline.WithLogger(logger),
		pipeline.WithRunID(runID),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting run",
		zap.String("dir", cfg.Dir),
		zap.Int64("threshold", cfg.Threshold),
		zap.String("repair", cfg.Process.Repair),
		zap.Int("workers", cfg.Process.Workers))

	if _, err := p.Run(ctx, cfg.Dir); err != nil {
		if errors.Is(err, pipeline.ErrDirNotFound) {
			return fmt.Errorf("the folder '%s' does not exist", cfg.Dir)
		}
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}

	if h != nil {
		if err := h.WriteTextfile(cfg.Output.MetricsPath); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}
	return nil
}

// loadConfig layers env vars, the optional YAML file, flags and positional args.
func loadConfig(cmd *cobra.Command, args []string, f flags) (config.Config, error) {
	cfg := config.Load()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, f.configPath); err != nil {
			return cfg, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("workers") {
		cfg.Process.Workers = f.workers
	}
	if fs.Changed("repair") {
		cfg.Process.Repair = f.repairMode
	}
	if fs.Changed("report") {
		cfg.Output.ReportPath = f.reportPath
	}
	if fs.Changed("metrics-file") {
		cfg.Output.MetricsPath = f.metricsPath
	}
	if fs.Changed("webhook") {
		cfg.Output.WebhookURL = f.webhookURL
	}

	cfg.Dir = args[0]
	threshold, err := config.ParseThreshold(args[1])
	if err != nil {
		return cfg, err
	}
	cfg.Threshold = threshold

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildOutput(cmd *cobra.Command, cfg config.Config, runID string, logger *zap.Logger) (output.Output, error) {
	outs := []output.Output{stdout.New(cmd.OutOrStdout())}
	if cfg.Output.ReportPath != "" {
		rep, err := file.New(cfg.Output.ReportPath, file.WithRunID(runID))
		if err != nil {
			return nil, err
		}
		outs = append(outs, rep)
	}
	if cfg.Output.WebhookURL != "" {
		hook := webhook.New(cfg.Output.WebhookURL,
			webhook.WithRunID(runID),
			webhook.WithLogger(logger))
		outs = append(outs, async.New(hook, async.WithLogger(logger)))
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}

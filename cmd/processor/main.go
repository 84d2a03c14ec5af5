// Command processor runs the aggregation pipeline once from the command
// line: one campaign export in, six report CSVs out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"klvcli/internal/config"
	"klvcli/internal/exporter"
	"klvcli/internal/infrastructure"
	"klvcli/internal/services"
	"klvcli/internal/trial"
	"klvcli/internal/validation"
)

const dateLayout = "2006-01-02"

func main() {
	inFile := flag.String("in", "", "input campaign export (.csv or .xlsx)")
	outDir := flag.String("out", "", "output directory for report CSVs (defaults to data/reports)")
	start := flag.String("start", "", "only include sends on or after this date (YYYY-MM-DD)")
	end := flag.String("end", "", "only include sends on or before this date (YYYY-MM-DD)")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "usage: processor -in <file.csv|file.xlsx> [-out dir] [-start YYYY-MM-DD] [-end YYYY-MM-DD]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.ReportsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	trialManager, err := trial.NewManager(cfg.Trial, logger)
	if err != nil {
		logger.Error("trial system initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if trialManager.IsExpired() {
		logger.Error("trial period has expired, activation required")
		os.Exit(1)
	}
	logger.Info("trial check passed",
		slog.String("countdown", trialManager.Status().Countdown))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(*inFile); err != nil {
		logger.Error("input validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(cfg.Paths.ReportsDir); err != nil {
		logger.Error("output validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	filter, err := buildFilter(*start, *end)
	if err != nil {
		logger.Error("invalid date filter", slog.String("error", err.Error()))
		os.Exit(2)
	}

	ctx := context.Background()
	svc := services.NewReportService(logger, nil)

	f, err := os.Open(*inFile)
	if err != nil {
		logger.Error("failed to open input file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	rows, err := svc.Load(ctx, *inFile, f)
	f.Close()
	if err != nil {
		logger.Error("failed to parse input file",
			slog.String("file", *inFile),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("input parsed", slog.String("file", *inFile), slog.Int("rows", rows))

	set, err := svc.Run(ctx, filter)
	if err != nil {
		logger.Error("aggregation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(cfg.NewPaths(), logger)
	if err := writer.WriteReportSet(set); err != nil {
		logger.Error("failed to write report CSVs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("processing complete",
		slog.String("run_id", set.RunID),
		slog.Int("input_rows", set.InputRows),
		slog.Int("filtered_out", set.FilteredOut),
		slog.String("output_dir", cfg.Paths.ReportsDir))
}

func buildFilter(start, end string) (services.Filter, error) {
	var filter services.Filter
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return filter, fmt.Errorf("invalid -start date %q", start)
		}
		filter.From = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return filter, fmt.Errorf("invalid -end date %q", end)
		}
		filter.To = t.Add(24*time.Hour - time.Second)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, fmt.Errorf("-end precedes -start")
	}
	return filter, nil
}

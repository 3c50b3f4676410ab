// Command smhi extracts data from SMHI's open meteorological observation API.
//
// With --parameters it lists the measurement-parameter catalog; with
// --temperatures it reports the warmest and coldest station among stations
// that reported recently. Both flags may be combined. Reports go to stdout,
// logs to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecerulm/data-engineer-assignment/internal/client"
	"github.com/ecerulm/data-engineer-assignment/internal/config"
	"github.com/ecerulm/data-engineer-assignment/internal/observability"
	"github.com/ecerulm/data-engineer-assignment/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("smhi", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	var (
		parameters   = flags.Bool("parameters", false, "List SMHI API parameters")
		temperatures = flags.Bool("temperatures", false, "List highest and lowest current temperatures")
		check        = flags.Bool("check", false, "Probe the SMHI API and print the HTTP status code")
		configPath   = flags.String("config", "", "Path to optional YAML config file (default smhi.yaml if present)")
		dumpMetrics  = flags.Bool("metrics", false, "Dump collected metrics to stderr after the run")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if !*parameters && !*temperatures && !*check {
		flags.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = observability.FlushTelemetry(logger) }()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	api, err := client.NewMetobsClient(cfg.BaseURL, cfg.Suffix, cfg.HTTPTimeout, logger, runID)
	if err != nil {
		logger.Error("smhi client", zap.Error(err))
		return 1
	}
	reporter := report.NewReporter(api, logger, os.Stdout, cfg.StaleAfter)

	ctx := context.Background()
	exitCode := 0

	if *check {
		status, err := api.CheckConnection(ctx)
		if err != nil {
			logger.Error("connection check failed", zap.Error(err))
			return 1
		}
		fmt.Println(status)
		if status != http.StatusOK {
			exitCode = 1
		}
	}

	if *parameters {
		if err := reporter.ListParameters(ctx); err != nil {
			logger.Error("list parameters failed", zap.Error(err))
			return 1
		}
	}

	if *temperatures {
		if err := reporter.TemperatureExtremes(ctx); err != nil {
			logger.Error("temperature report failed", zap.Error(err))
			return 1
		}
	}

	if *dumpMetrics {
		if err := observability.WriteMetrics(os.Stderr); err != nil {
			logger.Warn("metrics dump failed", zap.Error(err))
		}
	}

	return exitCode
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/mortgage-ledger/internal/config"
	"github.com/iwvelando/mortgage-ledger/internal/forecast"
	"github.com/iwvelando/mortgage-ledger/internal/optimizer"
	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/optimization"
	"github.com/iwvelando/mortgage-ledger/pkg/output"
	"github.com/iwvelando/mortgage-ledger/pkg/snapshot"
	"github.com/iwvelando/mortgage-ledger/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	snapshotLocation := flag.String("snapshot", "", "path to an exported JSON snapshot to calculate instead of the configuration")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	showFlag := flag.String("show", "", "what to print besides the summary: ledger, schedule, summary")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	targetPayoff := flag.String("target-payoff", "", "search for the monthly repayment that pays the loan off by this date (YYYY-MM-DD)")
	flag.Parse()

	conf := &config.Configuration{}
	if *snapshotLocation == "" {
		var err error
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI flags take precedence over config
	outputFormat := firstNonEmpty(*outputFormatFlag, conf.Output.Format, constants.OutputFormatPretty)
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	show := firstNonEmpty(*showFlag, conf.Output.Show, constants.ShowSummary)
	if err := validation.ValidateShow(show); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	var in forecast.Input
	var result *forecast.Forecast
	if *snapshotLocation != "" {
		in, err = fromSnapshot(logger, *snapshotLocation, conf.Policy)
		if err == nil {
			result, err = forecast.FromRecords(context.Background(), logger, forecast.SourceSnapshot, in)
		}
	} else {
		for _, warning := range conf.ValidateConfiguration() {
			logger.Warn("Configuration warning: "+warning,
				zap.String("op", "main"),
			)
		}
		in = forecast.Input{Mortgage: conf.Mortgage, Events: conf.TimelineEvents, Policy: conf.Policy.ToPolicy()}
		result, err = forecast.GetForecast(logger, *conf)
	}
	if err != nil {
		logger.Fatal("failed to calculate mortgage",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	var summary *optimization.Summary
	if optimizerConf := optimizerConfig(conf.Optimizer, *targetPayoff); optimizerConf != nil {
		runner, err := optimizer.NewRunner(logger, in, *optimizerConf)
		if err != nil {
			logger.Fatal("invalid optimizer configuration",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		found, err := runner.Run(context.Background())
		if err != nil {
			logger.Fatal("optimizer failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		summary = &found
	}

	if err := output.RenderWithOptimization(os.Stdout, outputFormat, show, result.Result, result.Comparisons, summary); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// optimizerConfig merges the -target-payoff flag into the configured
// optimizer section. nil means no search was asked for.
func optimizerConfig(configured *config.OptimizerConfig, target string) *config.OptimizerConfig {
	if target == "" {
		return configured
	}
	merged := config.OptimizerConfig{}
	if configured != nil {
		merged = *configured
	}
	merged.TargetPayoffDate = target
	return &merged
}

// fromSnapshot reads the records held in an exported snapshot file.
func fromSnapshot(logger *zap.Logger, path string, policy config.PolicyConfig) (forecast.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return forecast.Input{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	records, err := snapshot.Parse(data)
	if err != nil {
		return forecast.Input{}, err
	}
	decoded, err := records.Decode()
	if err != nil {
		return forecast.Input{}, fmt.Errorf("%s: %w", snapshot.ImportFailedMessage, err)
	}
	if decoded.Mortgage == nil {
		return forecast.Input{}, fmt.Errorf("snapshot %s has no mortgage data", path)
	}

	for _, warning := range validation.ValidateMortgage(*decoded.Mortgage) {
		logger.Warn("Snapshot warning: "+warning,
			zap.String("op", "main.fromSnapshot"),
		)
	}

	return forecast.Input{
		Mortgage:    *decoded.Mortgage,
		Events:      decoded.Events,
		Investments: decoded.Investments,
		Policy:      policy.ToPolicy(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

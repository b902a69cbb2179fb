// Package forecast runs a mortgage calculation end to end: it converts the
// configured or stored records, drops the events the engine must not see,
// runs the engine and compares any investments against the result.
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-ledger/internal/config"
	"github.com/iwvelando/mortgage-ledger/internal/metrics"
	"github.com/iwvelando/mortgage-ledger/internal/tracing"
	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Sources label where a calculation's input came from.
const (
	SourceConfig    = "config"
	SourceSnapshot  = "snapshot"
	SourceRequest   = "request"
	SourceStored    = "stored"
	SourceOptimizer = "optimizer"
)

// Forecast holds the outcome of one calculation.
type Forecast struct {
	Result      *mortgage.Result     `json:"result"`
	Comparisons []finance.Comparison `json:"comparisons,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// Input is everything a calculation reads.
type Input struct {
	Mortgage    adapters.MortgageData
	Events      []adapters.EventRecord
	Investments []finance.Investment
	Policy      mortgage.Policy
}

// GetForecast calculates the mortgage described by a loaded configuration.
func GetForecast(logger *zap.Logger, conf config.Configuration) (*Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loan, err := conf.LoanConfiguration()
	if err != nil {
		return nil, err
	}
	evs, warnings := conf.Events(logger)

	return calculate(context.Background(), logger, SourceConfig, loan, evs, warnings, conf.Investments, conf.Policy.ToPolicy(), conf.Mortgage.InterestRate)
}

// FromRecords calculates the mortgage described by stored or uploaded
// records. source labels the run in logs and metrics.
func FromRecords(ctx context.Context, logger *zap.Logger, source string, in Input) (*Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loan, err := in.Mortgage.ToLoanConfiguration()
	if err != nil {
		return nil, err
	}
	evs, warnings := adapters.RecordsToEvents(in.Events)
	for _, warning := range warnings {
		logger.Warn(warning,
			zap.String("op", "forecast.FromRecords"),
			zap.String("source", source),
		)
	}

	return calculate(ctx, logger, source, loan, evs, warnings, in.Investments, in.Policy, in.Mortgage.InterestRate)
}

func calculate(ctx context.Context, logger *zap.Logger, source string, loan mortgage.LoanConfiguration, evs []events.Event,
	warnings []string, investments []finance.Investment, policy mortgage.Policy, annualRate float64) (*Forecast, error) {
	_, span := tracing.Tracer("forecast").Start(ctx, "forecast.calculate")
	defer span.End()

	// Records converted elsewhere get the same check as configured ones.
	evs, dropped := events.NewProcessor().Filter(evs)
	for _, reason := range dropped {
		logger.Warn("dropping timeline event",
			zap.String("op", "forecast.calculate"),
			zap.String("reason", reason),
		)
	}
	warnings = append(warnings, dropped...)
	metrics.DroppedEvents.Add(float64(len(warnings)))

	span.SetAttributes(
		attribute.String("source", source),
		attribute.Int("events", len(evs)),
		attribute.Int("dropped_events", len(warnings)),
	)

	started := time.Now()
	result, err := mortgage.NewCalculator(logger, policy).Calculate(loan, evs)
	metrics.ObserveCalculation(source, started, result, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("mortgage calculation failed: %w", err)
	}

	forecast := &Forecast{
		Result:      result,
		Comparisons: finance.CompareAll(investments, annualRate, result),
		Warnings:    warnings,
	}

	span.SetAttributes(
		attribute.String("payoff_type", string(result.PayoffType)),
		attribute.Int("term_months", result.ActualTermMonths),
	)
	logger.Info("mortgage calculated",
		zap.String("op", "forecast.calculate"),
		zap.String("source", source),
		zap.Int("events", len(evs)),
		zap.Int("warnings", len(warnings)),
		zap.String("payoffType", string(result.PayoffType)),
		zap.Int("actualTermMonths", result.ActualTermMonths),
		zap.Float64("totalInterest", result.TotalInterest),
		zap.Float64("interestSaved", result.InterestSaved),
		zap.Duration("elapsed", time.Since(started)),
	)
	return forecast, nil
}

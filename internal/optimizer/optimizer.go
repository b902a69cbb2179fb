// Package optimizer searches for the monthly repayment that settles a
// mortgage by a target date.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-ledger/internal/config"
	"github.com/iwvelando/mortgage-ledger/internal/forecast"
	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"github.com/iwvelando/mortgage-ledger/pkg/optimization"
	"go.uber.org/zap"
)

// repaymentEventID marks the repayment change the search injects.
const repaymentEventID = "optimizer-repayment"

type Runner struct {
	logger *zap.Logger
	in     forecast.Input
	cfg    config.OptimizerConfig
	target time.Time
}

type evaluation struct {
	value  float64
	result *mortgage.Result
	target time.Time
}

func (e evaluation) feasible() bool {
	return e.result.PayoffType != mortgage.PayoffNone && !e.result.PayoffDate.After(e.target)
}

// NewRunner validates cfg and prepares a search over in. Investments are not
// compared during the search.
func NewRunner(logger *zap.Logger, in forecast.Input, cfg config.OptimizerConfig) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}
	if in.Mortgage.Principal <= 0 {
		return nil, fmt.Errorf("optimizer requires a positive principal, got %.2f", in.Mortgage.Principal)
	}
	in.Investments = nil
	return &Runner{logger: logger, in: in, cfg: cfg, target: target}, nil
}

// Run bisects between the configured bounds for the smallest repayment whose
// payoff date is on or before the target. When no repayment within the bounds
// reaches the target, the summary reports the upper bound and is not
// converged.
func (r *Runner) Run(ctx context.Context) (optimization.Summary, error) {
	baseline, err := r.calculate(ctx, nil)
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("optimizer baseline calculation failed: %w", err)
	}
	original := baseline.value

	minVal := original
	if r.cfg.Min != nil {
		minVal = *r.cfg.Min
	}
	// A first payment this large moves the whole loan into the pool.
	maxVal := r.in.Mortgage.Principal + original
	if r.cfg.Max != nil {
		maxVal = *r.cfg.Max
	}
	if maxVal < minVal {
		maxVal = minVal
	}

	lowerEval, err := r.evaluate(ctx, minVal)
	if err != nil {
		return optimization.Summary{}, err
	}
	if lowerEval.feasible() {
		return r.summarize(original, lowerEval, 0, true, "minimum repayment already reaches the target"), nil
	}

	upperEval, err := r.evaluate(ctx, maxVal)
	if err != nil {
		return optimization.Summary{}, err
	}
	if !upperEval.feasible() {
		note := fmt.Sprintf("unable to pay off by %s within bounds %s to %s",
			datetime.Format(r.target), format.Currency(minVal), format.Currency(maxVal))
		return r.summarize(original, upperEval, 0, false, note), nil
	}

	iterations := 0
	lower, upper := minVal, maxVal
	best := upperEval
	for iterations < r.cfg.MaxIterations && upper-lower > r.cfg.Tolerance {
		if err := ctx.Err(); err != nil {
			return optimization.Summary{}, err
		}
		mid := lower + (upper-lower)/2
		evalMid, err := r.evaluate(ctx, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if evalMid.feasible() {
			best = evalMid
			upper = mid
		} else {
			lower = mid
		}
	}

	// Round up to whole cents without losing feasibility.
	if cents := mathutil.RoundUp(best.value); cents != best.value {
		rounded, err := r.evaluate(ctx, cents)
		if err != nil {
			return optimization.Summary{}, err
		}
		if rounded.feasible() {
			best = rounded
		}
	}

	summary := r.summarize(original, best, iterations, true, "")
	r.logger.Info("optimizer found repayment",
		zap.String("op", "optimizer.Run"),
		zap.String("targetPayoffDate", summary.TargetPayoffDate),
		zap.Float64("original", summary.Original),
		zap.Float64("optimized", summary.Value),
		zap.String("payoffDate", summary.PayoffDate),
		zap.Int("iterations", summary.Iterations),
	)
	return summary, nil
}

func (r *Runner) evaluate(ctx context.Context, amount float64) (evaluation, error) {
	eval, err := r.calculate(ctx, &amount)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation at %s failed: %w", format.Currency(amount), err)
	}
	return eval, nil
}

// calculate runs the engine, first setting the repayment to amount when one
// is given. Later repayment changes in the timeline still apply.
func (r *Runner) calculate(ctx context.Context, amount *float64) (evaluation, error) {
	in := r.in
	if amount != nil {
		value := *amount
		injected := adapters.EventRecord{
			ID:          repaymentEventID,
			Date:        in.Mortgage.StartDate,
			Type:        string(events.RepaymentChange),
			Value:       &value,
			Description: "optimizer",
		}
		in.Events = append([]adapters.EventRecord{injected}, r.in.Events...)
	}

	fc, err := forecast.FromRecords(ctx, zap.NewNop(), forecast.SourceOptimizer, in)
	if err != nil {
		return evaluation{}, err
	}
	value := fc.Result.MonthlyPayment
	if amount != nil {
		value = *amount
	}
	return evaluation{value: value, result: fc.Result, target: r.target}, nil
}

func (r *Runner) summarize(original float64, eval evaluation, iterations int, converged bool, note string) optimization.Summary {
	summary := optimization.Summary{
		Field:            optimization.FieldMonthlyRepayment,
		TargetPayoffDate: datetime.Format(r.target),
		Original:         original,
		OriginalDisplay:  format.Currency(original),
		Value:            eval.value,
		ValueDisplay:     format.Currency(eval.value),
		ActualTermMonths: eval.result.ActualTermMonths,
		TotalInterest:    mathutil.Round(eval.result.TotalInterest),
		InterestSaved:    mathutil.Round(eval.result.InterestSaved),
		Iterations:       iterations,
		Converged:        converged,
	}
	if eval.result.PayoffType != mortgage.PayoffNone {
		summary.PayoffDate = datetime.Format(eval.result.PayoffDate)
	}
	if note != "" {
		summary.Notes = []string{note}
	}
	return summary
}

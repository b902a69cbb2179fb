package mortgage

import (
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/loans"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"go.uber.org/zap"
)

// Calculator runs mortgage calculations under a fixed policy. It holds no
// per-run state and is safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
	policy Policy
}

// NewCalculator creates a calculator. A nil logger discards output; zero
// policy fields take their defaults.
func NewCalculator(logger *zap.Logger, policy Policy) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, policy: policy.withDefaults()}
}

// Policy returns the effective policy of the calculator.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate replays the loan with the default policy.
func Calculate(cfg LoanConfiguration, evs []events.Event) (*Result, error) {
	return NewCalculator(nil, DefaultPolicy()).Calculate(cfg, evs)
}

// Calculate replays the loan and its events forward from the start date and
// returns the ledger and the summary derived from it. The only error is an
// event of unknown kind; degenerate configurations yield degenerate results.
func (c *Calculator) Calculate(cfg LoanConfiguration, evs []events.Event) (*Result, error) {
	cfg = normalize(cfg)
	policy := c.policy
	start := datetime.Truncate(cfg.StartDate)

	baseline := loans.CalculateMonthlyPayment(cfg.Principal, cfg.InterestRate, cfg.TotalMonths())
	originalInterest := loans.TotalInterest(baseline, cfg.TotalMonths(), nonNegative(cfg.Principal))

	state := &RunningState{
		AmortizedPrincipal: cfg.Principal,
		LiquidPool:         cfg.OffsetBalance,
		CurrentRate:        cfg.InterestRate,
		ScheduledPayment:   baseline,
		MinimumPayment:     baseline,
		LastInterestDate:   accrualStart(cfg, policy),
	}
	p := &pass{cfg: cfg, policy: policy, state: state, logger: c.logger}
	p.record(start, EntryInitialLoan, "Mortgage loan originated at "+format.Currency(cfg.Principal), 0, "")

	end := termEnd(cfg)
	payoffDate, payoffType := p.payoff(start)
	processed := 0
	if payoffType == PayoffNone {
		for _, t := range buildTimeline(cfg, evs, policy) {
			processed++
			for _, event := range t.Events {
				if err := p.applyEvent(t.Date, event); err != nil {
					return nil, err
				}
			}
			if t.Interest {
				p.accrueInterest(t.Date)
			}
			if t.Payment {
				p.applyPayment(t.Date, !t.Date.Before(end))
			}
			if payoffDate, payoffType = p.payoff(t.Date); payoffType != PayoffNone {
				break
			}
		}
	}
	if payoffType == PayoffNone {
		payoffDate = end
	}

	c.logger.Debug("mortgage calculation finished",
		zap.String("op", "mortgage.Calculate"),
		zap.Int("ticks", processed),
		zap.String("payoffDate", datetime.Format(payoffDate)),
		zap.String("payoffType", string(payoffType)),
		zap.Float64("totalInterest", state.TotalInterest),
	)

	result := summarize(p.ledger)
	result.MonthlyPayment = baseline
	result.OriginalTotalInterest = originalInterest
	result.InterestSaved = mathutil.NonNegative(originalInterest - result.TotalInterest)
	result.PayoffDate = payoffDate
	result.PayoffType = payoffType
	result.ProcessedTicks = processed
	result.FinalState = *state
	return result, nil
}

// payoff reports whether the loan is settled as of date.
func (p *pass) payoff(date time.Time) (time.Time, PayoffType) {
	if p.state.NetInterestBearing() > p.policy.Epsilon {
		return time.Time{}, PayoffNone
	}
	if p.state.AmortizedPrincipal <= p.policy.Epsilon {
		return date, PayoffFull
	}
	return date, PayoffEffective
}

// normalize fills the calendar defaults of a configuration.
func normalize(cfg LoanConfiguration) LoanConfiguration {
	if cfg.PaymentDay <= 0 {
		cfg.PaymentDay = 1
	}
	if cfg.InterestDay <= 0 {
		cfg.InterestDay = 1
	}
	if cfg.TermMonths < 0 {
		cfg.TermMonths = 0
	}
	if cfg.TermYears < 0 {
		cfg.TermYears = 0
	}
	return cfg
}

// summarize derives totals and the checkpoint schedule from the ledger.
func summarize(ledger []LedgerEntry) *Result {
	result := &Result{Transactions: ledger}
	var row *ScheduleRow
	var checkpoint bool

	flush := func() {
		if row != nil && checkpoint {
			row.Period = len(result.Schedule)
			result.Schedule = append(result.Schedule, *row)
		}
		row, checkpoint = nil, false
	}

	for _, entry := range ledger {
		if row != nil && !entry.Date.Equal(row.Date) {
			flush()
		}
		if row == nil {
			row = &ScheduleRow{Date: entry.Date}
		}

		switch entry.Type {
		case EntryInitialLoan:
			checkpoint = true
		case EntryInterestCharge:
			checkpoint = true
			row.Interest += entry.Amount
			result.TotalInterest += entry.Amount
		case EntryMonthlyPayment:
			checkpoint = true
			row.Payment -= entry.Amount
			result.TotalPayments -= entry.Amount
			result.ActualTermMonths++
		case EntryOffsetPayment:
			checkpoint = true
			row.Payment -= entry.Amount
			result.ActualTermMonths++
		}

		row.CumulativeInterest = result.TotalInterest
		row.Balance = entry.Balance
		row.OffsetBalance = entry.OffsetBalance
		row.NetBalance = entry.NetBalance
		row.Rate = entry.Rate
	}
	flush()
	return result
}

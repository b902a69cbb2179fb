package mortgage

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/loans"
	"go.uber.org/zap"
)

// pass carries the state of one calculation from the first tick to payoff.
type pass struct {
	cfg    LoanConfiguration
	policy Policy
	state  *RunningState
	ledger []LedgerEntry
	logger *zap.Logger
}

// record appends a ledger entry stamped with the current state.
func (p *pass) record(date time.Time, entryType EntryType, description string, amount float64, eventID string) {
	p.ledger = append(p.ledger, LedgerEntry{
		Date:           date,
		Type:           entryType,
		Description:    description,
		Amount:         amount,
		Balance:        nonNegative(p.state.AmortizedPrincipal),
		OffsetBalance:  nonNegative(p.state.LiquidPool),
		NetBalance:     p.state.NetInterestBearing(),
		Rate:           p.state.CurrentRate,
		Payment:        p.state.ScheduledPayment,
		MinimumPayment: p.state.MinimumPayment,
		EventID:        eventID,
	})
}

// recomputeMinimum re-amortizes the current principal over what is left of
// the term at the current rate.
func (p *pass) recomputeMinimum(date time.Time) {
	remaining := loans.RemainingMonths(p.cfg.TotalMonths(), p.cfg.StartDate, date)
	rate := loans.EffectiveMonthlyRate(p.state.CurrentRate, p.policy.DaysPerYear)
	p.state.MinimumPayment = loans.AnnuityPayment(nonNegative(p.state.AmortizedPrincipal), rate, remaining)
}

// applyEvent mutates the running state for one timeline event and records it.
func (p *pass) applyEvent(date time.Time, event events.Event) error {
	s := p.state
	var description string
	var amount float64

	switch event.Kind {
	case events.RateChange:
		previous := s.CurrentRate
		s.CurrentRate = event.Value
		p.recomputeMinimum(date)
		description = fmt.Sprintf("Interest rate changed from %.2f%% to %.2f%%", previous, s.CurrentRate)

	case events.Deposit:
		s.LiquidPool += event.Value
		description = "Deposit to offset account"
		amount = -event.Value

	case events.Redraw:
		if s.LiquidPool >= event.Value {
			s.LiquidPool -= event.Value
			description = "Redraw from offset account"
		} else {
			fromPool := nonNegative(s.LiquidPool)
			fromLoan := event.Value - fromPool
			s.LiquidPool = 0
			s.AmortizedPrincipal += fromLoan
			description = fmt.Sprintf("Redraw: %s from offset, %s increases loan",
				format.Currency(fromPool), format.Currency(fromLoan))
		}
		amount = event.Value

	case events.RepaymentChange:
		previous := s.ScheduledPayment
		s.ScheduledPayment = event.Value
		description = fmt.Sprintf("Monthly payment changed from %s to %s",
			format.Currency(previous), format.Currency(s.ScheduledPayment))

	case events.Refinance:
		s.AmortizedPrincipal = event.Value
		p.recomputeMinimum(date)
		description = fmt.Sprintf("Loan refinanced to %s", format.Currency(event.Value))

	case events.Recast:
		s.AmortizedPrincipal = nonNegative(s.AmortizedPrincipal - event.Value)
		p.recomputeMinimum(date)
		description = fmt.Sprintf("Recast: %s lump sum applied to principal", format.Currency(event.Value))
		amount = -event.Value

	case events.AdjustBalance:
		s.AmortizedPrincipal = event.Value
		description = fmt.Sprintf("Loan balance manually adjusted to %s", format.Currency(event.Value))

	case events.AdjustOffset:
		s.LiquidPool = event.Value
		description = fmt.Sprintf("Offset balance manually adjusted to %s", format.Currency(event.Value))

	default:
		return fmt.Errorf("event %s has unknown type %q", event.ID, event.Kind)
	}

	if event.Note != "" {
		description += " (" + event.Note + ")"
	}

	p.logger.Debug("applied timeline event",
		zap.String("op", "mortgage.applyEvent"),
		zap.String("date", datetime.Format(date)),
		zap.String("event", event.ID),
		zap.String("type", string(event.Kind)),
		zap.Float64("value", event.Value),
		zap.Float64("balance", s.AmortizedPrincipal),
		zap.Float64("offset", s.LiquidPool),
	)

	p.record(date, EntryType(event.Kind), description, amount, event.ID)
	return nil
}

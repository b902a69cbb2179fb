package mortgage

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/loans"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
)

func nonNegative(v float64) float64 {
	return mathutil.NonNegative(v)
}

// accrueInterest charges simple daily interest on the net balance for the
// days since the previous interest date.
func (p *pass) accrueInterest(date time.Time) {
	s := p.state
	days := datetime.DaysBetween(s.LastInterestDate, date)
	net := s.NetInterestBearing()
	s.LastInterestDate = date
	if net <= p.policy.Epsilon || days <= 0 {
		return
	}

	charge := loans.CalculateInterestCharge(net, s.CurrentRate, days, p.policy.DaysPerYear)
	s.AmortizedPrincipal += charge
	s.TotalInterest += charge
	p.record(date, EntryInterestCharge,
		fmt.Sprintf("Interest at %.2f%% for %d days on effective balance of %s",
			s.CurrentRate, days, format.Currency(net)),
		charge, "")
}

// applyPayment runs the payment waterfall for one payment day: principal up
// to the minimum payment, anything scheduled above the minimum into the
// pool. When the pool already covers the loan the whole payment goes to the
// pool. From the term end on, a payment that would leave less than one
// minimum payment outstanding settles the principal instead.
func (p *pass) applyPayment(date time.Time, final bool) {
	s := p.state
	if s.AmortizedPrincipal <= p.policy.Epsilon {
		return
	}

	paid := mathutil.Max(s.ScheduledPayment, s.MinimumPayment)
	if s.NetInterestBearing() <= p.policy.Epsilon {
		s.LiquidPool += paid
		s.PaymentPeriods++
		p.record(date, EntryOffsetPayment, "Payment routed to offset account; offset covers loan", -paid, "")
		return
	}

	principal := mathutil.Min(s.MinimumPayment, s.AmortizedPrincipal)
	settles := final && principal < s.AmortizedPrincipal && s.AmortizedPrincipal-principal <= s.MinimumPayment
	if settles {
		principal = s.AmortizedPrincipal
	}
	excess := nonNegative(s.ScheduledPayment - s.MinimumPayment)

	s.AmortizedPrincipal -= principal
	s.LiquidPool += excess
	s.TotalPayments += principal + excess
	s.PaymentPeriods++

	description := fmt.Sprintf("Monthly payment: %s principal", format.Currency(principal))
	if excess > 0 {
		description += fmt.Sprintf(", %s to offset", format.Currency(excess))
	}
	if settles {
		description += " (final payment)"
	}
	p.record(date, EntryMonthlyPayment, description, -(principal + excess), "")
}

// Package loans provides the annuity mathematics used by the mortgage engine
// and its baseline comparison.
package loans

import (
	"math"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
)

// DailyRate converts an annual percentage rate into a simple daily rate over a
// fixed-length year.
func DailyRate(annualInterestRate float64, daysPerYear int) float64 {
	if daysPerYear <= 0 {
		daysPerYear = constants.DaysPerYear
	}
	return mathutil.PercentToDecimal(annualInterestRate) / float64(daysPerYear)
}

// EffectiveMonthlyRate derives the monthly rate from the daily rate, so that
// annuity payments and daily interest accrual share one convention.
func EffectiveMonthlyRate(annualInterestRate float64, daysPerYear int) float64 {
	if daysPerYear <= 0 {
		daysPerYear = constants.DaysPerYear
	}
	return DailyRate(annualInterestRate, daysPerYear) * float64(daysPerYear) / constants.MonthsPerYear
}

// AnnuityPayment returns the fixed payment that amortizes principal over
// months periods at the given periodic rate. A zero or negative rate falls
// back to linear amortization; a non-positive principal needs no payment.
func AnnuityPayment(principal, periodicRate float64, months int) float64 {
	if principal <= 0 {
		return 0
	}
	if months < 1 {
		months = 1
	}
	if periodicRate <= 0 {
		return principal / float64(months)
	}

	power := math.Pow(1.00+periodicRate, float64(months))
	discountFactor := (power - 1.00) / power
	if discountFactor <= 0 || !mathutil.IsFinite(discountFactor) {
		return principal / float64(months)
	}
	return principal * periodicRate / discountFactor
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	return AnnuityPayment(principal, EffectiveMonthlyRate(annualInterestRate, constants.DaysPerYear), termMonths)
}

// CalculateInterestCharge returns simple interest on balance over days at the
// daily rate. Non-positive balances and spans accrue nothing.
func CalculateInterestCharge(balance, annualInterestRate float64, days, daysPerYear int) float64 {
	if balance <= 0 || days <= 0 {
		return 0
	}
	return balance * DailyRate(annualInterestRate, daysPerYear) * float64(days)
}

// TotalInterest returns the interest paid over a fixed-payment schedule,
// floored at zero.
func TotalInterest(monthlyPayment float64, termMonths int, principal float64) float64 {
	if termMonths < 1 {
		termMonths = 1
	}
	return mathutil.NonNegative(monthlyPayment*float64(termMonths) - principal)
}

// RemainingMonths is the number of months left in a term of totalMonths that
// began on start, as seen from asOf. At least one month always remains.
func RemainingMonths(totalMonths int, start, asOf time.Time) int {
	remaining := totalMonths - datetime.MonthsBetween(start, asOf)
	if remaining < 1 {
		return 1
	}
	return remaining
}

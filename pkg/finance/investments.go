// Package finance compares putting a lump sum into an investment against
// putting it into the mortgage. It reads the engine's result and never
// changes it.
package finance

import (
	"math"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
)

// capitalGainsDiscount is the share of a capital gain that is taxed when the
// asset has been held for more than a year. Crypto gets no discount.
const capitalGainsDiscount = 0.5

// InvestmentType is the asset class of an investment.
type InvestmentType string

// Investment types.
const (
	Shares      InvestmentType = "shares"
	ETF         InvestmentType = "etf"
	Property    InvestmentType = "property"
	Crypto      InvestmentType = "crypto"
	Savings     InvestmentType = "savings"
	TermDeposit InvestmentType = "term_deposit"
	Bonds       InvestmentType = "bonds"
	Other       InvestmentType = "other"
)

// reinvestsIncome reports whether dividends are reinvested rather than taken
// as cash.
func (t InvestmentType) reinvestsIncome() bool {
	return t == Shares || t == ETF
}

// Investment is an alternative use of a lump sum. Rates are percentages.
type Investment struct {
	ID            adapters.RecordID `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Type          InvestmentType    `json:"type" yaml:"type"`
	Amount        float64           `json:"amount" yaml:"amount"`
	AnnualReturn  float64           `json:"annualReturn" yaml:"annualReturn"`
	DividendYield float64           `json:"dividendYield" yaml:"dividendYield"`
	TaxRate       float64           `json:"taxRate" yaml:"taxRate"`
}

// Comparison is the outcome of investing the amount versus paying it into
// the mortgage over the loan's actual remaining life.
type Comparison struct {
	InvestmentID     adapters.RecordID `json:"investmentId"`
	InvestmentValue  float64           `json:"investmentValue"`
	CapitalGrowth    float64           `json:"capitalGrowth"`
	DividendValue    float64           `json:"dividendValue"`
	MortgageSavings  float64           `json:"mortgageSavings"`
	NetDifference    float64           `json:"netDifference"`
	InvestmentBetter bool              `json:"investmentBetter"`
	BreakEvenReturn  float64           `json:"breakEvenReturn"`
	Recommendations  []Recommendation  `json:"recommendations,omitempty"`
}

// Growth is the after-tax result of holding an investment.
type Growth struct {
	TotalValue    float64
	CapitalGrowth float64
	DividendValue float64
}

// CompareInvestment weighs inv against a mortgage paydown of the same amount.
// annualRatePercent is the mortgage rate. It returns nil when there is no
// result to compare against or nothing to invest.
func CompareInvestment(inv Investment, annualRatePercent float64, result *mortgage.Result) *Comparison {
	if result == nil || inv.Amount == 0 {
		return nil
	}

	years := float64(result.ActualTermMonths) / constants.MonthsPerYear
	growth := InvestmentGrowth(inv, years)
	savings := MortgagePaymentBenefit(inv.Amount, annualRatePercent, result.ActualTermMonths)
	net := growth.TotalValue - savings

	comparison := &Comparison{
		InvestmentID:     inv.ID,
		InvestmentValue:  growth.TotalValue,
		CapitalGrowth:    growth.CapitalGrowth,
		DividendValue:    growth.DividendValue,
		MortgageSavings:  savings,
		NetDifference:    net,
		InvestmentBetter: net > 0,
		BreakEvenReturn:  BreakEvenReturn(savings, inv.Amount, years),
	}
	comparison.Recommendations = Recommendations(inv, comparison)
	return comparison
}

// InvestmentGrowth compounds the investment once per whole year. Dividends
// are taxed once; shares and ETFs reinvest them, other types keep them as
// cash. Capital gains are taxed at the end, discounted except for crypto.
func InvestmentGrowth(inv Investment, years float64) Growth {
	annualReturn := mathutil.PercentToDecimal(inv.AnnualReturn)
	dividendYield := mathutil.PercentToDecimal(inv.DividendYield)
	taxRate := mathutil.PercentToDecimal(inv.TaxRate)

	value := inv.Amount
	var dividends, capitalGrowth float64
	for year := 1; float64(year) <= years; year++ {
		dividend := value * dividendYield * (1 - taxRate)
		growth := value * annualReturn
		value += growth
		capitalGrowth += growth
		dividends += dividend
		if inv.Type.reinvestsIncome() {
			value += dividend
		}
	}

	var capitalGainsTax float64
	if capitalGrowth > 0 {
		taxable := capitalGrowth * capitalGainsDiscount
		if inv.Type == Crypto {
			taxable = capitalGrowth
		}
		capitalGainsTax = taxable * taxRate
	}

	total := value - capitalGainsTax
	if !inv.Type.reinvestsIncome() {
		total += dividends
	}

	return Growth{
		TotalValue:    mathutil.NonNegative(total),
		CapitalGrowth: mathutil.NonNegative(capitalGrowth - capitalGainsTax),
		DividendValue: dividends,
	}
}

// MortgagePaymentBenefit is the amount paid plus the interest it avoids over
// the remaining months, with the avoided balance itself amortizing away at
// the mortgage rate.
func MortgagePaymentBenefit(extraPayment, annualRatePercent float64, remainingMonths int) float64 {
	monthlyRate := mathutil.PercentToDecimal(annualRatePercent) / constants.MonthsPerYear
	balance := extraPayment
	var saved float64

	for month := 0; month < remainingMonths && balance > 0; month++ {
		saved += balance * monthlyRate

		denominator := math.Pow(1+monthlyRate, float64(remainingMonths-month)) - 1
		if denominator <= 0 {
			// Zero rate: nothing to save, and the balance runs off linearly.
			balance -= extraPayment / float64(remainingMonths)
			continue
		}
		balance = mathutil.NonNegative(balance - balance*(monthlyRate/denominator))
	}

	return extraPayment + saved
}

// BreakEvenReturn is the annual return, in percent, at which the investment
// would match the mortgage savings over years.
func BreakEvenReturn(mortgageSavings, investmentAmount, years float64) float64 {
	if investmentAmount <= 0 || years <= 0 || mortgageSavings <= 0 {
		return 0
	}
	return (math.Pow(mortgageSavings/investmentAmount, 1/years) - 1) * constants.PercentageMultiplier
}

// CompareAll compares every investment, skipping those with nothing invested.
func CompareAll(investments []Investment, annualRatePercent float64, result *mortgage.Result) []Comparison {
	var comparisons []Comparison
	for _, inv := range investments {
		if comparison := CompareInvestment(inv, annualRatePercent, result); comparison != nil {
			comparisons = append(comparisons, *comparison)
		}
	}
	return comparisons
}

// Package adapters converts between the persisted JSON records of a mortgage
// analysis and the types the calculation engine works with.
package adapters

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
)

// MortgageData is the stored and exported form of the loan configuration.
// Field names match the mortgageData record of an exported snapshot.
type MortgageData struct {
	Principal          float64 `json:"principal" yaml:"principal"`
	InterestRate       float64 `json:"interestRate" yaml:"interestRate"`
	TermYears          int     `json:"termYears" yaml:"termYears"`
	TermMonths         int     `json:"termMonths" yaml:"termMonths"`
	StartDate          string  `json:"startDate" yaml:"startDate"`
	OffsetBalance      float64 `json:"offsetBalance" yaml:"offsetBalance"`
	PaymentDay         int     `json:"paymentDay" yaml:"paymentDay"`
	InterestDay        int     `json:"interestDay" yaml:"interestDay"`
	IsExistingMortgage bool    `json:"isExistingMortgage" yaml:"isExistingMortgage"`
}

// ToLoanConfiguration converts the record into an engine configuration. The
// only failure is an unparsable start date; out-of-range numbers are passed
// through for the engine to degrade on.
func (m MortgageData) ToLoanConfiguration() (mortgage.LoanConfiguration, error) {
	start, err := datetime.ParseDate(strings.TrimSpace(m.StartDate))
	if err != nil {
		return mortgage.LoanConfiguration{}, fmt.Errorf("invalid mortgage start date %q: %w", m.StartDate, err)
	}

	return mortgage.LoanConfiguration{
		Principal:          m.Principal,
		InterestRate:       m.InterestRate,
		TermYears:          m.TermYears,
		TermMonths:         m.TermMonths,
		StartDate:          start,
		OffsetBalance:      m.OffsetBalance,
		PaymentDay:         defaultDay(m.PaymentDay),
		InterestDay:        defaultDay(m.InterestDay),
		IsExistingMortgage: m.IsExistingMortgage,
	}, nil
}

// FromLoanConfiguration builds the record for an engine configuration.
func FromLoanConfiguration(cfg mortgage.LoanConfiguration) MortgageData {
	return MortgageData{
		Principal:          cfg.Principal,
		InterestRate:       cfg.InterestRate,
		TermYears:          cfg.TermYears,
		TermMonths:         cfg.TermMonths,
		StartDate:          datetime.Format(cfg.StartDate),
		OffsetBalance:      cfg.OffsetBalance,
		PaymentDay:         cfg.PaymentDay,
		InterestDay:        cfg.InterestDay,
		IsExistingMortgage: cfg.IsExistingMortgage,
	}
}

// defaultDay treats an absent day of month as the first.
func defaultDay(day int) int {
	if day <= 0 {
		return 1
	}
	return day
}

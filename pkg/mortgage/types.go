// Package mortgage replays a loan and its timeline events forward in time,
// producing a transaction ledger and the summary derived from it.
package mortgage

import (
	"encoding/json"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
)

// LoanConfiguration describes the loan as it stood on its start date.
type LoanConfiguration struct {
	Principal          float64
	InterestRate       float64
	TermYears          int
	TermMonths         int
	StartDate          time.Time
	OffsetBalance      float64
	PaymentDay         int
	InterestDay        int
	IsExistingMortgage bool
}

// TotalMonths is the contractual term in months, never less than one.
func (c LoanConfiguration) TotalMonths() int {
	total := c.TermYears*constants.MonthsPerYear + c.TermMonths
	if total < 1 {
		return 1
	}
	return total
}

// Policy holds the tunables of a calculation.
type Policy struct {
	// Epsilon is the balance at or below which a pool counts as empty.
	Epsilon float64
	// HorizonBufferMonths extends the generated calendar past the term.
	HorizonBufferMonths int
	// ExistingLookbackMonths is how far before the first scheduled interest
	// date the first charge of an existing mortgage starts accruing.
	ExistingLookbackMonths int
	DaysPerYear            int
}

// DefaultPolicy returns the policy used when none is supplied.
func DefaultPolicy() Policy {
	return Policy{
		Epsilon:                constants.CurrencyTolerance,
		HorizonBufferMonths:    constants.HorizonBufferMonths,
		ExistingLookbackMonths: constants.ExistingLookbackMonths,
		DaysPerYear:            constants.DaysPerYear,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Epsilon <= 0 {
		p.Epsilon = d.Epsilon
	}
	if p.HorizonBufferMonths <= 0 {
		p.HorizonBufferMonths = d.HorizonBufferMonths
	}
	if p.ExistingLookbackMonths <= 0 {
		p.ExistingLookbackMonths = d.ExistingLookbackMonths
	}
	if p.DaysPerYear <= 0 {
		p.DaysPerYear = d.DaysPerYear
	}
	return p
}

// RunningState is the accumulator of a single calculation pass.
type RunningState struct {
	AmortizedPrincipal float64   `json:"amortizedPrincipal"`
	LiquidPool         float64   `json:"liquidPool"`
	CurrentRate        float64   `json:"currentRate"`
	ScheduledPayment   float64   `json:"scheduledPayment"`
	MinimumPayment     float64   `json:"minimumPayment"`
	TotalInterest      float64   `json:"totalInterest"`
	TotalPayments      float64   `json:"totalPayments"`
	PaymentPeriods     int       `json:"paymentPeriods"`
	LastInterestDate   time.Time `json:"-"`
}

// NetInterestBearing is the balance interest accrues on. Negative pools are
// treated as empty.
func (s *RunningState) NetInterestBearing() float64 {
	return mathutil.NonNegative(mathutil.NonNegative(s.AmortizedPrincipal) - mathutil.NonNegative(s.LiquidPool))
}

// EntryType tags a ledger entry.
type EntryType string

// Ledger entry types not tied to a timeline event. Event entries use the
// event kind as their type.
const (
	EntryInitialLoan    EntryType = "Initial Loan"
	EntryInterestCharge EntryType = "Interest Charge"
	EntryMonthlyPayment EntryType = "Monthly Payment"
	EntryOffsetPayment  EntryType = "Offset Payment"
)

// LedgerEntry is one line of the transaction ledger.
type LedgerEntry struct {
	Date           time.Time `json:"-"`
	Type           EntryType `json:"type"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Balance        float64   `json:"mortgageBalance"`
	OffsetBalance  float64   `json:"offsetBalance"`
	NetBalance     float64   `json:"effectiveBalance"`
	Rate           float64   `json:"rate"`
	Payment        float64   `json:"monthlyPayment"`
	MinimumPayment float64   `json:"minimumPayment"`
	EventID        string    `json:"eventId,omitempty"`
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	type alias LedgerEntry
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: datetime.Format(e.Date), alias: alias(e)})
}

// ScheduleRow is the end-of-day snapshot on a payment or interest checkpoint.
type ScheduleRow struct {
	Period             int       `json:"month"`
	Date               time.Time `json:"-"`
	Payment            float64   `json:"payment"`
	Interest           float64   `json:"interest"`
	CumulativeInterest float64   `json:"cumulativeInterest"`
	Balance            float64   `json:"balance"`
	OffsetBalance      float64   `json:"offsetBalance"`
	NetBalance         float64   `json:"effectiveBalance"`
	Rate               float64   `json:"rate"`
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (r ScheduleRow) MarshalJSON() ([]byte, error) {
	type alias ScheduleRow
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: datetime.Format(r.Date), alias: alias(r)})
}

// PayoffType records how a calculation terminated.
type PayoffType string

// Payoff outcomes.
const (
	PayoffFull      PayoffType = "full"
	PayoffEffective PayoffType = "effective"
	PayoffNone      PayoffType = "none"
)

// Result is everything derived from one calculation pass.
type Result struct {
	MonthlyPayment        float64       `json:"monthlyPayment"`
	TotalInterest         float64       `json:"totalInterest"`
	TotalPayments         float64       `json:"totalPayments"`
	ActualTermMonths      int           `json:"actualTermMonths"`
	PayoffDate            time.Time     `json:"-"`
	PayoffType            PayoffType    `json:"payoffType"`
	InterestSaved         float64       `json:"interestSaved"`
	OriginalTotalInterest float64       `json:"originalTotalInterest"`
	ProcessedTicks        int           `json:"processedTicks"`
	Schedule              []ScheduleRow `json:"schedule"`
	Transactions          []LedgerEntry `json:"transactions"`
	FinalState            RunningState  `json:"finalState"`
}

// MarshalJSON writes the payoff date as YYYY-MM-DD.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		PayoffDate string `json:"payoffDate"`
		alias
	}{PayoffDate: datetime.Format(r.PayoffDate), alias: alias(r)})
}

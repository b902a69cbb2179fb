package mortgage

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"go.uber.org/zap"
)

func mustCalculate(t *testing.T, cfg LoanConfiguration, evs []events.Event) *Result {
	t.Helper()
	result, err := NewCalculator(zap.NewNop(), DefaultPolicy()).Calculate(cfg, evs)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return result
}

func entriesOfType(ledger []LedgerEntry, entryType EntryType) []LedgerEntry {
	var out []LedgerEntry
	for _, entry := range ledger {
		if entry.Type == entryType {
			out = append(out, entry)
		}
	}
	return out
}

func TestStandardScenario(t *testing.T) {
	result := mustCalculate(t, standardConfig(), nil)

	if got := mathutil.Round(result.MonthlyPayment); got != 1796.18 {
		t.Errorf("monthly payment = %.2f, expected 1796.18", got)
	}

	charges := entriesOfType(result.Transactions, EntryInterestCharge)
	if len(charges) == 0 {
		t.Fatal("expected interest charges")
	}
	first := charges[0]
	if got := datetime.Format(first.Date); got != "2024-02-01" {
		t.Errorf("first interest charge on %s, expected 2024-02-01", got)
	}
	// 31 days at 3.5% over a 365-day year.
	if got := mathutil.Round(first.Amount); got != 1189.04 {
		t.Errorf("first interest charge = %.2f, expected 1189.04", got)
	}
	if math.Abs(first.Amount-400000*0.035/12) > 25 {
		t.Errorf("first interest charge %.2f too far from the monthly-rate figure", first.Amount)
	}

	if result.PayoffDate.After(day("2054-01-01")) {
		t.Errorf("payoff %s is after the nominal term end", datetime.Format(result.PayoffDate))
	}
	if result.PayoffType != PayoffFull {
		t.Errorf("payoff type = %q, expected full", result.PayoffType)
	}
	if result.ActualTermMonths != 360 {
		t.Errorf("actual term = %d months, expected 360", result.ActualTermMonths)
	}
}

func TestNoEventsBaselineConverges(t *testing.T) {
	tests := []struct {
		name string
		cfg  LoanConfiguration
	}{
		{"400k at 3.5% over 30 years", standardConfig()},
		{
			name: "250k at 6.25% over 25 years mid-month",
			cfg: LoanConfiguration{
				Principal: 250000, InterestRate: 6.25, TermYears: 25,
				StartDate: day("2023-06-10"), PaymentDay: 10, InterestDay: 10,
			},
		},
		{
			name: "300k at 0.5% over 20 years",
			cfg: LoanConfiguration{
				Principal: 300000, InterestRate: 0.5, TermYears: 20,
				StartDate: day("2024-01-01"), PaymentDay: 1, InterestDay: 1,
			},
		},
		{
			name: "Term with extra months",
			cfg: LoanConfiguration{
				Principal: 120000, InterestRate: 4.5, TermYears: 10, TermMonths: 6,
				StartDate: day("2024-03-01"), PaymentDay: 1, InterestDay: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustCalculate(t, tt.cfg, nil)

			relative := math.Abs(result.TotalInterest-result.OriginalTotalInterest) / result.OriginalTotalInterest
			if relative > 0.005 {
				t.Errorf("total interest %.2f differs from baseline %.2f by %.3f%%",
					result.TotalInterest, result.OriginalTotalInterest, relative*100)
			}

			nominal := termEnd(tt.cfg)
			earliest := datetime.MonthDate(nominal, -1, tt.cfg.PaymentDay)
			if result.PayoffDate.After(nominal) || result.PayoffDate.Before(earliest) {
				t.Errorf("payoff %s not within one period of %s",
					datetime.Format(result.PayoffDate), datetime.Format(nominal))
			}

			if math.Abs(result.TotalPayments-(tt.cfg.Principal+result.TotalInterest)) > 0.01 {
				t.Errorf("payments %.2f do not cover principal plus interest %.2f",
					result.TotalPayments, tt.cfg.Principal+result.TotalInterest)
			}
		})
	}
}

func TestOffsetCoveringPrincipalPaysOffImmediately(t *testing.T) {
	cfg := standardConfig()
	cfg.OffsetBalance = cfg.Principal
	result := mustCalculate(t, cfg, nil)

	if len(result.Transactions) != 1 {
		t.Fatalf("expected only the initial entry, got %d", len(result.Transactions))
	}
	first := result.Transactions[0]
	if first.Type != EntryInitialLoan || first.NetBalance != 0 {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Balance != cfg.Principal || result.FinalState.AmortizedPrincipal != cfg.Principal {
		t.Errorf("amortized principal changed: %+v", result.FinalState)
	}
	if result.PayoffType != PayoffEffective || !result.PayoffDate.Equal(cfg.StartDate) {
		t.Errorf("payoff = %s/%s, expected effective on the start date",
			result.PayoffType, datetime.Format(result.PayoffDate))
	}
	if result.TotalInterest != 0 || result.ProcessedTicks != 0 {
		t.Errorf("nothing should accrue: interest %.2f, ticks %d", result.TotalInterest, result.ProcessedTicks)
	}
}

func TestDepositRedrawRoundTrip(t *testing.T) {
	cfg := standardConfig()
	cfg.OffsetBalance = 5000
	evs := []events.Event{
		{ID: "d", Date: day("2024-03-05"), Kind: events.Deposit, Value: 20000},
		{ID: "r", Date: day("2024-03-20"), Kind: events.Redraw, Value: 20000},
	}
	baseline := mustCalculate(t, cfg, nil)
	result := mustCalculate(t, cfg, evs)

	var before, after *LedgerEntry
	for i := range result.Transactions {
		entry := &result.Transactions[i]
		if entry.EventID == "d" {
			before = &result.Transactions[i-1]
		}
		if entry.EventID == "r" {
			after = entry
		}
	}
	if before == nil || after == nil {
		t.Fatal("expected deposit and redraw entries")
	}
	if after.OffsetBalance != before.OffsetBalance {
		t.Errorf("pool after round trip = %.2f, expected %.2f", after.OffsetBalance, before.OffsetBalance)
	}
	if after.Balance != before.Balance {
		t.Errorf("principal after round trip = %.2f, expected %.2f", after.Balance, before.Balance)
	}
	if result.TotalInterest != baseline.TotalInterest {
		t.Errorf("total interest %.2f differs from %.2f", result.TotalInterest, baseline.TotalInterest)
	}
}

func TestRecastShortensPayoff(t *testing.T) {
	cfg := standardConfig()
	baseline := mustCalculate(t, cfg, nil)

	tests := []struct {
		name   string
		amount float64
	}{
		{"Small recast", 5000},
		{"Large recast", 50000},
		{"Recast above the balance", 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evs := []events.Event{{ID: "rc", Date: day("2026-02-01"), Kind: events.Recast, Value: tt.amount}}
			result := mustCalculate(t, cfg, evs)

			if result.ProcessedTicks >= baseline.ProcessedTicks {
				t.Errorf("ticks = %d, expected fewer than %d", result.ProcessedTicks, baseline.ProcessedTicks)
			}
			if result.TotalInterest >= baseline.TotalInterest {
				t.Errorf("interest = %.2f, expected less than %.2f", result.TotalInterest, baseline.TotalInterest)
			}
			if tt.amount >= 400000 {
				if result.PayoffType != PayoffFull || datetime.Format(result.PayoffDate) != "2026-02-01" {
					t.Errorf("payoff = %s/%s, expected full on 2026-02-01",
						result.PayoffType, datetime.Format(result.PayoffDate))
				}
			}
		})
	}
}

func TestDepositCoveringBalanceIsEffectivePayoff(t *testing.T) {
	evs := []events.Event{{ID: "big", Date: day("2025-06-15"), Kind: events.Deposit, Value: 500000}}
	result := mustCalculate(t, standardConfig(), evs)

	if result.PayoffType != PayoffEffective {
		t.Errorf("payoff type = %q, expected effective", result.PayoffType)
	}
	if got := datetime.Format(result.PayoffDate); got != "2025-06-15" {
		t.Errorf("payoff date = %s, expected 2025-06-15", got)
	}
	if result.FinalState.AmortizedPrincipal <= 0 {
		t.Errorf("amortized principal should remain outstanding")
	}
	if result.InterestSaved <= 0 {
		t.Errorf("expected interest saved, got %.2f", result.InterestSaved)
	}
}

func TestDepositOnPaymentDayRoutesPaymentToPool(t *testing.T) {
	evs := []events.Event{{ID: "big", Date: day("2024-06-01"), Kind: events.Deposit, Value: 1000000}}
	result := mustCalculate(t, standardConfig(), evs)

	last := result.Transactions[len(result.Transactions)-1]
	if last.Type != EntryOffsetPayment {
		t.Fatalf("last entry = %q, expected an offset payment", last.Type)
	}
	if got := datetime.Format(last.Date); got != "2024-06-01" {
		t.Errorf("offset payment on %s", got)
	}
	for _, entry := range result.Transactions {
		if entry.Type == EntryInterestCharge && datetime.Format(entry.Date) == "2024-06-01" {
			t.Errorf("no interest should be charged on a fully offset balance")
		}
	}
}

func TestRepaymentIncreasePaysOffEarly(t *testing.T) {
	cfg := standardConfig()
	baseline := mustCalculate(t, cfg, nil)
	evs := []events.Event{{ID: "up", Date: day("2024-01-15"), Kind: events.RepaymentChange, Value: 3000}}
	result := mustCalculate(t, cfg, evs)

	if !result.PayoffDate.Before(baseline.PayoffDate) {
		t.Errorf("payoff %s not before baseline %s",
			datetime.Format(result.PayoffDate), datetime.Format(baseline.PayoffDate))
	}
	if result.FinalState.ScheduledPayment != 3000 {
		t.Errorf("scheduled payment = %.2f, expected 3000", result.FinalState.ScheduledPayment)
	}
	if result.FinalState.LiquidPool <= 0 {
		t.Errorf("payments above the minimum should build the pool")
	}
}

func TestRateChangeRecomputesMinimum(t *testing.T) {
	cfg := standardConfig()
	evs := []events.Event{{ID: "up", Date: day("2026-01-01"), Kind: events.RateChange, Value: 6}}
	result := mustCalculate(t, cfg, evs)

	var change *LedgerEntry
	for i := range result.Transactions {
		if result.Transactions[i].EventID == "up" {
			change = &result.Transactions[i]
		}
	}
	if change == nil {
		t.Fatal("rate change not recorded")
	}
	if change.Rate != 6 || change.MinimumPayment <= result.MonthlyPayment {
		t.Errorf("minimum payment %.2f not raised above %.2f at %.2f%%",
			change.MinimumPayment, result.MonthlyPayment, change.Rate)
	}
	if result.TotalInterest <= result.OriginalTotalInterest {
		t.Errorf("a higher rate should cost more interest: %.2f vs %.2f",
			result.TotalInterest, result.OriginalTotalInterest)
	}
	if result.InterestSaved != 0 {
		t.Errorf("interest saved = %.2f, expected 0", result.InterestSaved)
	}
}

func TestZeroRateAmortizesLinearly(t *testing.T) {
	cfg := LoanConfiguration{
		Principal: 12000, InterestRate: 0, TermYears: 1,
		StartDate: day("2024-01-01"), PaymentDay: 1, InterestDay: 1,
	}
	result := mustCalculate(t, cfg, nil)

	if result.MonthlyPayment != 1000 {
		t.Errorf("monthly payment = %.2f, expected 1000", result.MonthlyPayment)
	}
	if result.TotalInterest != 0 || len(entriesOfType(result.Transactions, EntryInterestCharge)) != 0 {
		t.Errorf("zero rate should charge no interest")
	}
	if got := datetime.Format(result.PayoffDate); got != "2025-01-01" {
		t.Errorf("payoff = %s, expected 2025-01-01", got)
	}
	if result.ActualTermMonths != 12 {
		t.Errorf("term = %d, expected 12", result.ActualTermMonths)
	}
}

func TestDegenerateConfigurations(t *testing.T) {
	tests := []struct {
		name string
		cfg  LoanConfiguration
	}{
		{"Zero principal", LoanConfiguration{Principal: 0, InterestRate: 5, TermYears: 30, StartDate: day("2024-01-01")}},
		{"Negative principal", LoanConfiguration{Principal: -100, InterestRate: 5, TermYears: 30, StartDate: day("2024-01-01")}},
		{"Zero term", LoanConfiguration{Principal: 5000, InterestRate: 5, StartDate: day("2024-01-01")}},
		{"Missing calendar days", LoanConfiguration{Principal: 5000, InterestRate: 5, TermYears: 1, StartDate: day("2024-01-01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustCalculate(t, tt.cfg, nil)
			if math.IsNaN(result.MonthlyPayment) || math.IsInf(result.MonthlyPayment, 0) {
				t.Errorf("monthly payment is not finite: %v", result.MonthlyPayment)
			}
			if result.PayoffType == PayoffNone {
				t.Errorf("expected the loan to settle")
			}
			if len(result.Transactions) == 0 || result.Transactions[0].Type != EntryInitialLoan {
				t.Errorf("ledger must open with the initial loan")
			}
		})
	}
}

func TestExistingMortgageBackdatesFirstCharge(t *testing.T) {
	cfg := standardConfig()
	cfg.StartDate = day("2024-01-20")
	fresh := mustCalculate(t, cfg, nil)
	cfg.IsExistingMortgage = true
	existing := mustCalculate(t, cfg, nil)

	freshFirst := entriesOfType(fresh.Transactions, EntryInterestCharge)[0]
	existingFirst := entriesOfType(existing.Transactions, EntryInterestCharge)[0]

	// 12 days from the start date versus a full 31-day January.
	if got := mathutil.Round(freshFirst.Amount); got != mathutil.Round(400000*0.035/365*12) {
		t.Errorf("new mortgage first charge = %.2f", got)
	}
	if got := mathutil.Round(existingFirst.Amount); got != 1189.04 {
		t.Errorf("existing mortgage first charge = %.2f, expected 1189.04", got)
	}
}

func TestZeroPolicyBackdatesExistingMortgage(t *testing.T) {
	cfg := standardConfig()
	cfg.StartDate = day("2024-01-15")
	cfg.IsExistingMortgage = true

	result, err := NewCalculator(nil, Policy{}).Calculate(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	first := result.Transactions[1]
	if first.Type != EntryInterestCharge || datetime.Format(first.Date) != "2024-02-01" {
		t.Fatalf("first entry after origination = %s on %s, expected an interest charge on 2024-02-01",
			first.Type, datetime.Format(first.Date))
	}
	if got := mathutil.Round(first.Amount); got != 1189.04 {
		t.Errorf("first charge = %.2f, expected a full January of interest (1189.04)", got)
	}
}

func TestLateBalanceIncreasePaysOffAfterTermEnd(t *testing.T) {
	evs := []events.Event{{ID: "late", Date: day("2053-06-15"), Kind: events.AdjustBalance, Value: 30000}}
	result := mustCalculate(t, standardConfig(), evs)

	end := day("2054-01-01")
	if result.PayoffType != PayoffFull {
		t.Fatalf("payoff type = %q, expected full", result.PayoffType)
	}
	if !result.PayoffDate.After(end) {
		t.Errorf("payoff %s, expected after the term end %s", datetime.Format(result.PayoffDate), datetime.Format(end))
	}
	if result.ActualTermMonths <= 360 {
		t.Errorf("actual term = %d months, expected more than 360", result.ActualTermMonths)
	}
	for _, entry := range entriesOfType(result.Transactions, EntryMonthlyPayment) {
		if -entry.Amount > 2*result.MonthlyPayment {
			t.Errorf("%s payment of %.2f is a balloon, minimum is %.2f",
				datetime.Format(entry.Date), -entry.Amount, result.MonthlyPayment)
		}
	}
}

func TestBalanceBeyondHorizonIsNotPaidOff(t *testing.T) {
	evs := []events.Event{{ID: "late", Date: day("2053-06-15"), Kind: events.AdjustBalance, Value: 100000}}
	result := mustCalculate(t, standardConfig(), evs)

	if result.PayoffType != PayoffNone {
		t.Fatalf("payoff type = %q, expected none", result.PayoffType)
	}
	if got := datetime.Format(result.PayoffDate); got != "2054-01-01" {
		t.Errorf("payoff date = %s, expected the nominal term end", got)
	}
	if result.FinalState.AmortizedPrincipal <= 0 {
		t.Errorf("expected principal left at the horizon, got %.2f", result.FinalState.AmortizedPrincipal)
	}
}

func TestRepaymentBelowMinimumChangesNothing(t *testing.T) {
	baseline := mustCalculate(t, standardConfig(), nil)
	evs := []events.Event{{ID: "low", Date: day("2024-01-01"), Kind: events.RepaymentChange, Value: 500}}
	lowered := mustCalculate(t, standardConfig(), evs)

	if lowered.TotalPayments != baseline.TotalPayments || lowered.TotalInterest != baseline.TotalInterest {
		t.Errorf("payments %.2f interest %.2f, expected %.2f and %.2f",
			lowered.TotalPayments, lowered.TotalInterest, baseline.TotalPayments, baseline.TotalInterest)
	}
	if !lowered.PayoffDate.Equal(baseline.PayoffDate) {
		t.Errorf("payoff %s, expected %s", datetime.Format(lowered.PayoffDate), datetime.Format(baseline.PayoffDate))
	}
}

func TestUnknownEventKindIsRejected(t *testing.T) {
	evs := []events.Event{{ID: "x", Date: day("2024-05-01"), Kind: "bonus", Value: 1}}
	if _, err := Calculate(standardConfig(), evs); err == nil {
		t.Fatal("expected an error for an unknown event kind")
	}
}

func TestLedgerIsChronologicalAndSummarized(t *testing.T) {
	evs := []events.Event{
		{ID: "1", Date: day("2024-04-10"), Kind: events.Deposit, Value: 10000},
		{ID: "2", Date: day("2025-01-01"), Kind: events.RateChange, Value: 4.1},
		{ID: "3", Date: day("2026-07-04"), Kind: events.Redraw, Value: 15000},
		{ID: "4", Date: day("2027-02-01"), Kind: events.AdjustOffset, Value: 2000},
	}
	result := mustCalculate(t, standardConfig(), evs)

	for i := 1; i < len(result.Transactions); i++ {
		if result.Transactions[i].Date.Before(result.Transactions[i-1].Date) {
			t.Fatalf("entry %d is out of order", i)
		}
	}

	if math.Abs(result.TotalInterest-result.FinalState.TotalInterest) > 1e-6 {
		t.Errorf("ledger interest %.2f disagrees with state %.2f", result.TotalInterest, result.FinalState.TotalInterest)
	}
	if math.Abs(result.TotalPayments-result.FinalState.TotalPayments) > 1e-6 {
		t.Errorf("ledger payments %.2f disagree with state %.2f", result.TotalPayments, result.FinalState.TotalPayments)
	}
	if result.ActualTermMonths != result.FinalState.PaymentPeriods {
		t.Errorf("term %d disagrees with payment periods %d", result.ActualTermMonths, result.FinalState.PaymentPeriods)
	}

	schedule := result.Schedule
	if len(schedule) == 0 || !schedule[0].Date.Equal(day("2024-01-01")) {
		t.Fatal("schedule should open on the start date")
	}
	for i := 1; i < len(schedule); i++ {
		if !schedule[i].Date.After(schedule[i-1].Date) {
			t.Fatalf("schedule row %d is not after row %d", i, i-1)
		}
		if schedule[i].Period != i {
			t.Errorf("row %d has period %d", i, schedule[i].Period)
		}
		if schedule[i].CumulativeInterest < schedule[i-1].CumulativeInterest {
			t.Errorf("cumulative interest decreased at row %d", i)
		}
	}
	if got := schedule[len(schedule)-1].CumulativeInterest; math.Abs(got-result.TotalInterest) > 1e-6 {
		t.Errorf("final cumulative interest %.2f, expected %.2f", got, result.TotalInterest)
	}
	for _, row := range schedule {
		if row.Date.Equal(day("2024-04-10")) || row.Date.Equal(day("2026-07-04")) {
			t.Errorf("event-only date %s should not be a checkpoint", datetime.Format(row.Date))
		}
	}
}

func TestResultJSON(t *testing.T) {
	result := mustCalculate(t, standardConfig(), nil)
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`"payoffDate":"2054-01-01"`,
		`"payoffType":"full"`,
		`"date":"2024-01-01"`,
		`"type":"Initial Loan"`,
		`"monthlyPayment":`,
		`"interestSaved":`,
		`"schedule":[`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}

func TestCalculatorIsReusable(t *testing.T) {
	calc := NewCalculator(nil, Policy{})
	if calc.Policy() != DefaultPolicy() {
		t.Errorf("zero policy should take defaults, got %+v", calc.Policy())
	}
	first, err := calc.Calculate(standardConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := calc.Calculate(standardConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalInterest != second.TotalInterest || len(first.Transactions) != len(second.Transactions) {
		t.Errorf("repeated calculations differ")
	}
}

// Package output provides utilities for formatting and displaying mortgage results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"github.com/iwvelando/mortgage-ledger/pkg/optimization"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes result to w in the given format, showing the ledger, the
// schedule or just the summary.
func Render(w io.Writer, outputFormat, show string, result *mortgage.Result, comparisons []finance.Comparison) error {
	return RenderWithOptimization(w, outputFormat, show, result, comparisons, nil)
}

// RenderWithOptimization is Render followed by a repayment search summary
// when summary is not nil. JSON output carries it in the same document.
func RenderWithOptimization(w io.Writer, outputFormat, show string, result *mortgage.Result, comparisons []finance.Comparison, summary *optimization.Summary) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, show, result, comparisons)
		if summary != nil {
			PrettyOptimization(w, *summary)
		}
		return nil
	case constants.OutputFormatCSV:
		CsvFormat(w, show, result)
		if summary != nil {
			fmt.Fprintln(w)
			CsvOptimization(w, *summary)
		}
		return nil
	case constants.OutputFormatJSON:
		return writeJSON(w, result, comparisons, summary)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, show string, result *mortgage.Result, comparisons []finance.Comparison) {
	p := message.NewPrinter(language.English)
	writeSummary(w, result)

	switch show {
	case constants.ShowLedger:
		fmt.Fprintf(w, "\n--- Transaction ledger ---\n")
		fmt.Fprintf(w, "Date       | Type                 | Amount        | Balance       | Offset        | Effective     | Description\n")
		fmt.Fprintf(w, "____       | ____                 | ______        | _______       | ______        | _________     | ___________\n")
		for _, entry := range result.Transactions {
			// Event entries carry their kind; show its display name.
			_, _ = p.Fprintf(w, "%s | %-20s | %13s | $%12.2f | $%12.2f | $%12.2f | %s\n",
				datetime.Format(entry.Date), events.Kind(entry.Type).Label(), format.SignedCurrency(entry.Amount),
				entry.Balance, entry.OffsetBalance, entry.NetBalance, entry.Description)
		}
	case constants.ShowSchedule:
		fmt.Fprintf(w, "\n--- Schedule ---\n")
		fmt.Fprintf(w, "Period | Date       | Payment     | Interest    | Balance       | Offset        | Effective     | Rate\n")
		fmt.Fprintf(w, "______ | ____       | _______     | ________    | _______       | ______        | _________     | ____\n")
		for _, row := range result.Schedule {
			_, _ = p.Fprintf(w, "%6d | %s | $%10.2f | $%10.2f | $%12.2f | $%12.2f | $%12.2f | %s\n",
				row.Period, datetime.Format(row.Date), row.Payment, row.Interest,
				row.Balance, row.OffsetBalance, row.NetBalance, format.Percent(row.Rate))
		}
	}

	if len(comparisons) > 0 {
		fmt.Fprintf(w, "\n--- Investment comparisons ---\n")
		for _, c := range comparisons {
			verdict := "mortgage paydown is better"
			if c.InvestmentBetter {
				verdict = "investing is better"
			}
			fmt.Fprintf(w, "%s: investment %s vs mortgage %s (%s by %s, break-even return %s)\n",
				c.InvestmentID, format.Currency(c.InvestmentValue), format.Currency(c.MortgageSavings),
				verdict, format.Currency(c.NetDifference), format.Percent(c.BreakEvenReturn))
		}
	}
}

func writeSummary(w io.Writer, result *mortgage.Result) {
	fmt.Fprintf(w, "--- Mortgage summary ---\n")
	fmt.Fprintf(w, "Monthly payment:         %s\n", format.Currency(result.MonthlyPayment))
	fmt.Fprintf(w, "Total interest:          %s\n", format.Currency(result.TotalInterest))
	fmt.Fprintf(w, "Original total interest: %s\n", format.Currency(result.OriginalTotalInterest))
	fmt.Fprintf(w, "Interest saved:          %s\n", format.Currency(result.InterestSaved))
	fmt.Fprintf(w, "Total payments:          %s\n", format.Currency(result.TotalPayments))
	fmt.Fprintf(w, "Payoff date:             %s (%s)\n", datetime.Format(result.PayoffDate), result.PayoffType)
	fmt.Fprintf(w, "Actual term:             %d months\n", result.ActualTermMonths)
}

// CsvFormat outputs in comma-separated value format. The summary view
// writes a single key/value table.
func CsvFormat(w io.Writer, show string, result *mortgage.Result) {
	switch show {
	case constants.ShowSchedule:
		fmt.Fprintf(w, `"month","date","payment","interest","cumulative interest","balance","offset","effective balance","rate"`+"\n")
		for _, row := range result.Schedule {
			fmt.Fprintf(w, `"%d","%s","%s","%s","%s","%s","%s","%s","%s"`+"\n",
				row.Period, datetime.Format(row.Date), mathutil.Fixed(row.Payment), mathutil.Fixed(row.Interest),
				mathutil.Fixed(row.CumulativeInterest), mathutil.Fixed(row.Balance), mathutil.Fixed(row.OffsetBalance),
				mathutil.Fixed(row.NetBalance), mathutil.Fixed(row.Rate))
		}
	case constants.ShowSummary:
		fmt.Fprintf(w, `"field","value"`+"\n")
		fmt.Fprintf(w, `"monthly payment","%s"`+"\n", mathutil.Fixed(result.MonthlyPayment))
		fmt.Fprintf(w, `"total interest","%s"`+"\n", mathutil.Fixed(result.TotalInterest))
		fmt.Fprintf(w, `"original total interest","%s"`+"\n", mathutil.Fixed(result.OriginalTotalInterest))
		fmt.Fprintf(w, `"interest saved","%s"`+"\n", mathutil.Fixed(result.InterestSaved))
		fmt.Fprintf(w, `"total payments","%s"`+"\n", mathutil.Fixed(result.TotalPayments))
		fmt.Fprintf(w, `"payoff date","%s"`+"\n", datetime.Format(result.PayoffDate))
		fmt.Fprintf(w, `"payoff type","%s"`+"\n", result.PayoffType)
		fmt.Fprintf(w, `"actual term months","%d"`+"\n", result.ActualTermMonths)
	default:
		fmt.Fprintf(w, `"date","type","description","amount","balance","offset","effective balance","rate","payment","minimum payment"`+"\n")
		for _, entry := range result.Transactions {
			fmt.Fprintf(w, `"%s","%s","%s","%s","%s","%s","%s","%s","%s","%s"`+"\n",
				datetime.Format(entry.Date), entry.Type, csvEscape(entry.Description), mathutil.Fixed(entry.Amount),
				mathutil.Fixed(entry.Balance), mathutil.Fixed(entry.OffsetBalance), mathutil.Fixed(entry.NetBalance),
				mathutil.Fixed(entry.Rate), mathutil.Fixed(entry.Payment), mathutil.Fixed(entry.MinimumPayment))
		}
	}
}

// CsvString returns CsvFormat output as a string.
func CsvString(show string, result *mortgage.Result) string {
	var sb strings.Builder
	CsvFormat(&sb, show, result)
	return sb.String()
}

// JSONFormat writes the result and any comparisons as indented JSON.
func JSONFormat(w io.Writer, result *mortgage.Result, comparisons []finance.Comparison) error {
	return writeJSON(w, result, comparisons, nil)
}

func writeJSON(w io.Writer, result *mortgage.Result, comparisons []finance.Comparison, summary *optimization.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Result       *mortgage.Result      `json:"result"`
		Comparisons  []finance.Comparison  `json:"comparisons,omitempty"`
		Optimization *optimization.Summary `json:"optimization,omitempty"`
	}{result, comparisons, summary})
}

func csvEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

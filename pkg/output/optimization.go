package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/mortgage-ledger/pkg/format"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
	"github.com/iwvelando/mortgage-ledger/pkg/optimization"
)

// PrettyOptimization prints a repayment search summary.
func PrettyOptimization(w io.Writer, summary optimization.Summary) {
	fmt.Fprintf(w, "\n--- Repayment target ---\n")
	fmt.Fprintf(w, "Target payoff date:      %s\n", summary.TargetPayoffDate)
	fmt.Fprintf(w, "Current repayment:       %s\n", summary.OriginalDisplay)
	fmt.Fprintf(w, "Required repayment:      %s\n", summary.ValueDisplay)
	if summary.PayoffDate != "" {
		fmt.Fprintf(w, "Payoff date:             %s (%d months)\n", summary.PayoffDate, summary.ActualTermMonths)
	}
	fmt.Fprintf(w, "Total interest:          %s\n", format.Currency(summary.TotalInterest))
	fmt.Fprintf(w, "Converged:               %t after %d iterations\n", summary.Converged, summary.Iterations)
	for _, note := range summary.Notes {
		fmt.Fprintf(w, "Note: %s\n", note)
	}
}

// CsvOptimization writes a repayment search summary as a key/value table.
func CsvOptimization(w io.Writer, summary optimization.Summary) {
	fmt.Fprintf(w, `"field","value"`+"\n")
	fmt.Fprintf(w, `"target payoff date","%s"`+"\n", summary.TargetPayoffDate)
	fmt.Fprintf(w, `"current repayment","%s"`+"\n", mathutil.Fixed(summary.Original))
	fmt.Fprintf(w, `"required repayment","%s"`+"\n", mathutil.Fixed(summary.Value))
	fmt.Fprintf(w, `"payoff date","%s"`+"\n", summary.PayoffDate)
	fmt.Fprintf(w, `"actual term months","%d"`+"\n", summary.ActualTermMonths)
	fmt.Fprintf(w, `"total interest","%s"`+"\n", mathutil.Fixed(summary.TotalInterest))
	fmt.Fprintf(w, `"converged","%t"`+"\n", summary.Converged)
	fmt.Fprintf(w, `"notes","%s"`+"\n", csvEscape(strings.Join(summary.Notes, "; ")))
}

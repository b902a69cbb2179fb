// Package optimization provides shared data structures for optimization results.
package optimization

// FieldMonthlyRepayment is the only field the optimizer searches.
const FieldMonthlyRepayment = "monthlyRepayment"

// Summary captures the result of a payoff target search.
type Summary struct {
	Field            string   `json:"field"`
	TargetPayoffDate string   `json:"targetPayoffDate"`
	Original         float64  `json:"original"`
	Value            float64  `json:"value"`
	PayoffDate       string   `json:"payoffDate"`
	ActualTermMonths int      `json:"actualTermMonths"`
	TotalInterest    float64  `json:"totalInterest"`
	InterestSaved    float64  `json:"interestSaved"`
	Iterations       int      `json:"iterations"`
	Converged        bool     `json:"converged"`
	Notes            []string `json:"notes,omitempty"`
	OriginalDisplay  string   `json:"originalDisplay,omitempty"`
	ValueDisplay     string   `json:"valueDisplay,omitempty"`
}

package finance

import "math"

// Recommendation kinds.
const (
	RecommendRisk            = "risk"
	RecommendConservative    = "conservative"
	RecommendTax             = "tax"
	RecommendPositive        = "positive"
	RecommendNeutral         = "neutral"
	RecommendDiversification = "diversification"
)

const (
	highTaxRatePercent  = 20
	strongUpside        = 10000
	closeCallDifference = 5000
)

// Recommendation is a short piece of advice attached to a comparison.
type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Recommendations returns advice for inv given its comparison. A nil
// comparison yields none.
func Recommendations(inv Investment, comparison *Comparison) []Recommendation {
	if comparison == nil {
		return nil
	}

	var out []Recommendation
	switch inv.Type {
	case Shares, Crypto:
		out = append(out, Recommendation{RecommendRisk,
			"Higher risk investment - consider your risk tolerance and investment timeline"})
	case Savings, TermDeposit:
		out = append(out, Recommendation{RecommendConservative,
			"Low risk option - guaranteed returns but may not beat mortgage interest rate"})
	}

	if inv.TaxRate > highTaxRatePercent {
		out = append(out, Recommendation{RecommendTax,
			"High tax rate - consider tax-efficient investment structures or salary sacrificing"})
	}

	switch {
	case comparison.InvestmentBetter && comparison.NetDifference > strongUpside:
		out = append(out, Recommendation{RecommendPositive,
			"Strong case for investing - significant potential upside over mortgage payments"})
	case !comparison.InvestmentBetter && math.Abs(comparison.NetDifference) < closeCallDifference:
		out = append(out, Recommendation{RecommendNeutral,
			"Close call - consider non-financial factors like peace of mind from debt reduction"})
	}

	return append(out, Recommendation{RecommendDiversification,
		"Consider splitting funds between investments and mortgage payments for balanced approach"})
}

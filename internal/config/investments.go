package config

import (
	"fmt"

	"github.com/iwvelando/mortgage-ledger/pkg/finance"
)

var knownInvestmentTypes = map[finance.InvestmentType]bool{
	finance.Shares:      true,
	finance.ETF:         true,
	finance.Property:    true,
	finance.Crypto:      true,
	finance.Savings:     true,
	finance.TermDeposit: true,
	finance.Bonds:       true,
	finance.Other:       true,
}

// ValidateInvestments returns warnings for investments that will be skipped
// or compared on assumptions the user may not expect.
func (c *Configuration) ValidateInvestments() []string {
	var warnings []string
	for i, investment := range c.Investments {
		name := investment.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		if investment.Amount == 0 {
			warnings = append(warnings, fmt.Sprintf("Investment '%s' has no amount and will not be compared", name))
		}
		if !knownInvestmentTypes[investment.Type] {
			warnings = append(warnings, fmt.Sprintf("Investment '%s' has unknown type %q - its income is treated as cash", name, investment.Type))
		}
		if investment.TaxRate < 0 || investment.TaxRate > 100 {
			warnings = append(warnings, fmt.Sprintf("Investment '%s' tax rate %.2f%% is outside 0-100%%", name, investment.TaxRate))
		}
	}
	return warnings
}

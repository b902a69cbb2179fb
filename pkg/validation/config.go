// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
)

// ValidateMaturityDate warns when an event falls after the loan's nominal
// maturity, where it can only matter if the loan has been extended.
func ValidateMaturityDate(eventName, startDate, eventDate string, termMonths int) (string, error) {
	maturityDate, err := datetime.OffsetDate(startDate, datetime.DateLayout, termMonths)
	if err != nil {
		return "", err
	}

	after, err := datetime.DateBeforeDate(maturityDate, eventDate)
	if err != nil {
		return "", err
	}
	if after {
		return fmt.Sprintf("Event '%s' is after the loan matures (%s > %s) - it will not be applied if the loan is paid off on schedule",
			eventName, eventDate, maturityDate), nil
	}

	return "", nil
}

// ValidateMortgage returns warnings for loan settings the engine will accept
// but produce a degenerate result for.
func ValidateMortgage(m adapters.MortgageData) []string {
	var warnings []string

	if m.Principal <= 0 {
		warnings = append(warnings, fmt.Sprintf("Mortgage principal should be positive, got %.2f", m.Principal))
	}
	if m.InterestRate < 0 {
		warnings = append(warnings, fmt.Sprintf("Mortgage interest rate should not be negative, got %.2f%%", m.InterestRate))
	}
	if m.TermYears < 0 || m.TermMonths < 0 || m.TermYears*constants.MonthsPerYear+m.TermMonths <= 0 {
		warnings = append(warnings, fmt.Sprintf("Mortgage term should be at least one month, got %d years %d months",
			m.TermYears, m.TermMonths))
	}
	if m.TermMonths >= constants.MonthsPerYear {
		warnings = append(warnings, fmt.Sprintf("Mortgage term months should be between 0 and 11, got %d", m.TermMonths))
	}
	if m.OffsetBalance < 0 {
		warnings = append(warnings, fmt.Sprintf("Offset balance should not be negative, got %.2f", m.OffsetBalance))
	}
	warnings = append(warnings, validateDay("Payment", m.PaymentDay)...)
	warnings = append(warnings, validateDay("Interest", m.InterestDay)...)
	if _, err := datetime.ParseDate(m.StartDate); err != nil {
		warnings = append(warnings, fmt.Sprintf("Mortgage start date %q is not a YYYY-MM-DD date", m.StartDate))
	}

	return warnings
}

func validateDay(name string, day int) []string {
	// Zero means "not set" and defaults to the first.
	if day == 0 || (day >= constants.MinDayOfMonth && day <= constants.MaxDayOfMonth) {
		return nil
	}
	return []string{fmt.Sprintf("%s day should be between %d and %d, got %d - it will be clamped into each month",
		name, constants.MinDayOfMonth, constants.MaxDayOfMonth, day)}
}

// ValidateEvents warns about events dated before the loan starts, which are
// applied on the start date, and after it matures.
func ValidateEvents(m adapters.MortgageData, records []adapters.EventRecord) []string {
	var warnings []string
	termMonths := m.TermYears*constants.MonthsPerYear + m.TermMonths

	for _, record := range records {
		name := string(record.ID)
		if record.Description != "" {
			name = record.Description
		}

		before, err := datetime.DateBeforeDate(record.Date, m.StartDate)
		if err != nil {
			continue
		}
		if before {
			warnings = append(warnings, fmt.Sprintf("Event '%s' is before the loan starts (%s < %s) - it will be applied on the start date",
				name, record.Date, m.StartDate))
			continue
		}

		warning, err := ValidateMaturityDate(name, m.StartDate, record.Date, termMonths)
		if err == nil && warning != "" {
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

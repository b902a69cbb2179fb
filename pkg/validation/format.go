// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-ledger/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateShow checks that the requested view is one of ledger, schedule or summary.
func ValidateShow(show string) error {
	switch show {
	case constants.ShowLedger, constants.ShowSchedule, constants.ShowSummary:
		return nil
	}
	return fmt.Errorf("expected show of %s, %s or %s, got %s",
		constants.ShowLedger, constants.ShowSchedule, constants.ShowSummary, show)
}

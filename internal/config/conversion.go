package config

import (
	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"go.uber.org/zap"
)

// LoanConfiguration converts the mortgage section for the engine.
func (c *Configuration) LoanConfiguration() (mortgage.LoanConfiguration, error) {
	return c.Mortgage.ToLoanConfiguration()
}

// Events converts the timeline events for the engine, dropping the ones the
// engine must not see. Each dropped event is logged and returned as a warning.
func (c *Configuration) Events(logger *zap.Logger) ([]events.Event, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	converted, warnings := adapters.RecordsToEvents(c.TimelineEvents)
	for _, warning := range warnings {
		logger.Warn(warning,
			zap.String("op", "config.Events"),
		)
	}
	return converted, warnings
}

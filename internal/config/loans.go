package config

import (
	"fmt"

	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
)

// PolicyConfig overrides the engine tunables. Zero values keep the defaults.
type PolicyConfig struct {
	Epsilon                float64 `yaml:"epsilon,omitempty"`
	HorizonBufferMonths    int     `yaml:"horizonBufferMonths,omitempty"`
	ExistingLookbackMonths int     `yaml:"existingLookbackMonths,omitempty"`
}

// ToPolicy returns the engine policy with any configured overrides applied.
func (p PolicyConfig) ToPolicy() mortgage.Policy {
	policy := mortgage.DefaultPolicy()
	if p.Epsilon > 0 {
		policy.Epsilon = p.Epsilon
	}
	if p.HorizonBufferMonths > 0 {
		policy.HorizonBufferMonths = p.HorizonBufferMonths
	}
	if p.ExistingLookbackMonths > 0 {
		policy.ExistingLookbackMonths = p.ExistingLookbackMonths
	}
	return policy
}

// Validate warns about overrides that will be ignored.
func (p PolicyConfig) Validate() []string {
	var warnings []string
	if p.Epsilon < 0 {
		warnings = append(warnings, fmt.Sprintf("Policy epsilon %.4f is negative and will be ignored", p.Epsilon))
	}
	if p.HorizonBufferMonths < 0 {
		warnings = append(warnings, fmt.Sprintf("Policy horizonBufferMonths %d is negative and will be ignored", p.HorizonBufferMonths))
	}
	if p.ExistingLookbackMonths < 0 {
		warnings = append(warnings, fmt.Sprintf("Policy existingLookbackMonths %d is negative and will be ignored", p.ExistingLookbackMonths))
	}
	return warnings
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
)

const (
	defaultOptimizerTolerance     = 1.0
	defaultOptimizerMaxIterations = 60
)

// OptimizerConfig asks for the smallest monthly repayment that settles the
// loan by TargetPayoffDate. Min and Max bound the search; they default to the
// baseline repayment and the principal plus that repayment.
type OptimizerConfig struct {
	TargetPayoffDate string   `yaml:"targetPayoffDate,omitempty" json:"targetPayoffDate" mapstructure:"targetPayoffDate"`
	Min              *float64 `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max              *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Tolerance        float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations    int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize applies defaults.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.TargetPayoffDate = strings.TrimSpace(o.TargetPayoffDate)
	if o.Tolerance <= 0 {
		o.Tolerance = defaultOptimizerTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultOptimizerMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unusable.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if _, err := o.Target(); err != nil {
		return err
	}
	if o.Min != nil && *o.Min < 0 {
		return fmt.Errorf("optimizer min %.2f cannot be negative", *o.Min)
	}
	if o.Min != nil && o.Max != nil && *o.Max < *o.Min {
		return fmt.Errorf("optimizer max %.2f is below min %.2f", *o.Max, *o.Min)
	}
	return nil
}

// Target parses TargetPayoffDate.
func (o *OptimizerConfig) Target() (time.Time, error) {
	if o.TargetPayoffDate == "" {
		return time.Time{}, fmt.Errorf("optimizer targetPayoffDate is required")
	}
	target, err := datetime.ParseDate(o.TargetPayoffDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid optimizer targetPayoffDate %q: %w", o.TargetPayoffDate, err)
	}
	return target, nil
}

// Package config defines the data structures related to configuration and
// includes functions for loading, validating and converting it for the
// mortgage engine.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-ledger.
type Configuration struct {
	Logging        LoggingConfig          `yaml:"logging,omitempty"`
	Output         OutputConfig           `yaml:"output,omitempty"`
	Policy         PolicyConfig           `yaml:"policy,omitempty"`
	Mortgage       adapters.MortgageData  `yaml:"mortgage"`
	TimelineEvents []adapters.EventRecord `yaml:"timelineEvents,omitempty"`
	Investments    []finance.Investment   `yaml:"investments,omitempty"`
	Optimizer      *OptimizerConfig       `yaml:"optimizer,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
	Show   string `yaml:"show,omitempty"`   // ledger, schedule, summary
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Nothing here stops a calculation.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	warnings = append(warnings, validation.ValidateMortgage(c.Mortgage)...)
	warnings = append(warnings, validation.ValidateEvents(c.Mortgage, c.TimelineEvents)...)
	warnings = append(warnings, c.ValidateInvestments()...)
	warnings = append(warnings, c.Policy.Validate()...)
	if c.Optimizer != nil {
		if err := c.Optimizer.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("Optimizer will not run: %s", err))
		}
	}
	return warnings
}

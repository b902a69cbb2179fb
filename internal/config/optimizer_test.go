package config

import (
	"strings"
	"testing"
)

func TestLoadConfigurationOptimizer(t *testing.T) {
	conf, err := LoadConfiguration(testConfigPath())
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Optimizer == nil {
		t.Fatal("optimizer section was not loaded")
	}
	if conf.Optimizer.TargetPayoffDate != "2040-01-01" || conf.Optimizer.Tolerance != 0.5 {
		t.Errorf("optimizer = %+v", conf.Optimizer)
	}
	if conf.Optimizer.Min != nil || conf.Optimizer.Max != nil {
		t.Errorf("unset bounds should stay nil: %+v", conf.Optimizer)
	}
}

func TestOptimizerConfigValidate(t *testing.T) {
	low, high := 3000.0, 2000.0
	negative := -5.0

	tests := []struct {
		name    string
		cfg     OptimizerConfig
		wantErr string
	}{
		{name: "valid", cfg: OptimizerConfig{TargetPayoffDate: " 2040-01-01 "}},
		{name: "missing target", cfg: OptimizerConfig{}, wantErr: "targetPayoffDate is required"},
		{name: "bad target", cfg: OptimizerConfig{TargetPayoffDate: "2040/01/01"}, wantErr: "invalid optimizer targetPayoffDate"},
		{name: "negative min", cfg: OptimizerConfig{TargetPayoffDate: "2040-01-01", Min: &negative}, wantErr: "cannot be negative"},
		{name: "max below min", cfg: OptimizerConfig{TargetPayoffDate: "2040-01-01", Min: &low, Max: &high}, wantErr: "is below min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if tt.cfg.Tolerance != defaultOptimizerTolerance || tt.cfg.MaxIterations != defaultOptimizerMaxIterations {
					t.Errorf("defaults not applied: %+v", tt.cfg)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, expected %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigurationOptimizerWarning(t *testing.T) {
	conf, err := LoadConfiguration(testConfigPath())
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.Optimizer.TargetPayoffDate = "whenever"

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "Optimizer will not run") {
		t.Errorf("warnings = %v", warnings)
	}
}

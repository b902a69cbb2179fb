package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{"Valid pretty format", "pretty", false},
		{"Valid csv format", "csv", false},
		{"Valid json format", "json", false},
		{"Invalid format", "xml", true},
		{"Empty format", "", true},
		{"Case sensitive - uppercase", "PRETTY", true},
		{"Leading/trailing spaces", " pretty ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error: %v", tt.format, err)
			}
		})
	}
}

func TestValidateShow(t *testing.T) {
	for _, show := range []string{"ledger", "schedule", "summary"} {
		if err := ValidateShow(show); err != nil {
			t.Errorf("ValidateShow(%q) unexpected error: %v", show, err)
		}
	}
	for _, show := range []string{"", "chart", "Ledger"} {
		if err := ValidateShow(show); err == nil {
			t.Errorf("ValidateShow(%q) expected error but got none", show)
		}
	}
}

package events

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
)

func date(s string) time.Time {
	return datetime.MustParseTime(datetime.DateLayout, s)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw       string
		expected  Kind
		wantError bool
	}{
		{"rateChange", RateChange, false},
		{"deposit", Deposit, false},
		{"redraw", Redraw, false},
		{"repaymentChange", RepaymentChange, false},
		{"refinance", Refinance, false},
		{"recast", Recast, false},
		{"adjustBalance", AdjustBalance, false},
		{"adjustOffset", AdjustOffset, false},
		{"withdrawal", "", true},
		{"", "", true},
		{"Deposit", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseKind(tt.raw)
			if (err != nil) != tt.wantError {
				t.Fatalf("ParseKind(%q) error = %v, wantError %v", tt.raw, err, tt.wantError)
			}
			if got != tt.expected {
				t.Errorf("ParseKind(%q) = %q, expected %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestKindsAreValidAndLabelled(t *testing.T) {
	all := Kinds()
	if len(all) != 8 {
		t.Fatalf("expected 8 event kinds, got %d", len(all))
	}
	for _, k := range all {
		if !k.Valid() {
			t.Errorf("kind %q reported invalid", k)
		}
		if k.Label() == string(k) {
			t.Errorf("kind %q has no display label", k)
		}
	}

	all[0] = "mutated"
	if Kinds()[0] == "mutated" {
		t.Errorf("Kinds() must return a copy")
	}
}

func TestEventValidate(t *testing.T) {
	valid := Event{ID: "1", Date: date("2024-05-01"), Kind: Deposit, Value: 1000}

	tests := []struct {
		name      string
		mutate    func(e *Event)
		wantError bool
	}{
		{"Valid event", func(e *Event) {}, false},
		{"Missing id", func(e *Event) { e.ID = "" }, true},
		{"Missing date", func(e *Event) { e.Date = time.Time{} }, true},
		{"Unknown kind", func(e *Event) { e.Kind = "bonus" }, true},
		{"NaN value", func(e *Event) { e.Value = math.NaN() }, true},
		{"Infinite value", func(e *Event) { e.Value = math.Inf(1) }, true},
		{"Zero value is allowed", func(e *Event) { e.Value = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := valid
			tt.mutate(&event)
			err := event.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestSortStablePreservesSameDayOrder(t *testing.T) {
	input := []Event{
		{ID: "c", Date: date("2024-03-01"), Kind: Deposit},
		{ID: "a1", Date: date("2024-01-01"), Kind: Deposit},
		{ID: "b", Date: date("2024-02-01"), Kind: Redraw},
		{ID: "a2", Date: date("2024-01-01"), Kind: Redraw},
		{ID: "a3", Date: date("2024-01-01"), Kind: RateChange},
	}

	sorted := SortStable(input)
	expected := []string{"a1", "a2", "a3", "b", "c"}
	for i, id := range expected {
		if sorted[i].ID != id {
			t.Errorf("position %d = %s, expected %s", i, sorted[i].ID, id)
		}
	}

	if input[0].ID != "c" {
		t.Errorf("SortStable must not reorder its input")
	}
}

func TestSortStableIgnoresClockTime(t *testing.T) {
	morning := date("2024-05-01")
	input := []Event{
		{ID: "evening", Date: morning.Add(20 * time.Hour), Kind: Deposit},
		{ID: "morning", Date: morning.Add(8 * time.Hour), Kind: Redraw},
		{ID: "earlier", Date: date("2024-04-30").Add(23 * time.Hour), Kind: Deposit},
	}

	sorted := SortStable(input)
	expected := []string{"earlier", "evening", "morning"}
	for i, id := range expected {
		if sorted[i].ID != id {
			t.Errorf("position %d = %s, expected %s", i, sorted[i].ID, id)
		}
	}
}

func TestProcessorFilter(t *testing.T) {
	processor := NewProcessor()
	input := []Event{
		{ID: "1", Date: date("2024-01-01"), Kind: Deposit, Value: 100},
		{ID: "2", Date: date("2024-01-01"), Kind: "bogus", Value: 100},
		{ID: "3", Kind: Redraw, Value: 100},
		{ID: "4", Date: date("2024-02-01"), Kind: Recast, Value: 5000},
	}

	kept, dropped := processor.Filter(input)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept events, got %d", len(kept))
	}
	if kept[0].ID != "1" || kept[1].ID != "4" {
		t.Errorf("unexpected kept events: %+v", kept)
	}
	if len(dropped) != 2 {
		t.Errorf("expected 2 dropped descriptions, got %v", dropped)
	}
}

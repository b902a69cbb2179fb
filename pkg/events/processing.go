// Package events defines the user-supplied timeline events that drive the
// mortgage engine, along with their validation and ordering.
package events

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
)

// Kind identifies what a timeline event does to the loan.
type Kind string

// The closed set of timeline event kinds.
const (
	RateChange      Kind = "rateChange"
	Deposit         Kind = "deposit"
	Redraw          Kind = "redraw"
	RepaymentChange Kind = "repaymentChange"
	Refinance       Kind = "refinance"
	Recast          Kind = "recast"
	AdjustBalance   Kind = "adjustBalance"
	AdjustOffset    Kind = "adjustOffset"
)

var kinds = []Kind{
	Redraw,
	Deposit,
	RateChange,
	RepaymentChange,
	Refinance,
	Recast,
	AdjustBalance,
	AdjustOffset,
}

var labels = map[Kind]string{
	Redraw:          "Redraw",
	Deposit:         "Deposit",
	RateChange:      "Interest rate change",
	RepaymentChange: "Repayment change",
	Refinance:       "Refinance",
	Recast:          "Recast",
	AdjustBalance:   "Adjust balance",
	AdjustOffset:    "Adjust offset",
}

// Kinds returns every known event kind.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// Label returns the display name for k.
func (k Kind) Label() string {
	if label, ok := labels[k]; ok {
		return label
	}
	return string(k)
}

func kindList() string {
	names := make([]string, 0, len(kinds))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// ParseKind converts a raw type tag into a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown event type %q (expected one of %s)", raw, kindList())
	}
	return k, nil
}

// Event is a discrete, dated change to the loan. Value semantics depend on
// Kind: a percentage for RateChange, a currency amount otherwise.
type Event struct {
	ID    string
	Date  time.Time
	Kind  Kind
	Value float64
	Note  string
}

// Validate checks that an event is well formed enough to hand to the engine.
func (event Event) Validate() error {
	if event.ID == "" {
		return fmt.Errorf("event is missing an id")
	}
	if event.Date.IsZero() {
		return fmt.Errorf("event %s is missing a date", event.ID)
	}
	if !event.Kind.Valid() {
		return fmt.Errorf("event %s has unknown type %q", event.ID, event.Kind)
	}
	if !mathutil.IsFinite(event.Value) {
		return fmt.Errorf("event %s has a non-numeric value", event.ID)
	}
	return nil
}

// SortStable returns a copy of events ordered by calendar date. Events sharing
// a date keep their original relative order whatever their clock times.
func SortStable(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return datetime.Truncate(sorted[i].Date).Before(datetime.Truncate(sorted[j].Date))
	})
	return sorted
}

// Processor filters event lists before they reach the engine.
type Processor struct{}

// NewProcessor creates a new event processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Filter keeps the well-formed events and returns a description of each one
// that was dropped.
func (p *Processor) Filter(events []Event) ([]Event, []string) {
	kept := make([]Event, 0, len(events))
	var dropped []string
	for _, event := range events {
		if err := event.Validate(); err != nil {
			dropped = append(dropped, err.Error())
			continue
		}
		kept = append(kept, event)
	}
	return kept, dropped
}

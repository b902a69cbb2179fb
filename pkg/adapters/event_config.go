package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-ledger/pkg/datetime"
	"github.com/iwvelando/mortgage-ledger/pkg/events"
	"github.com/iwvelando/mortgage-ledger/pkg/mathutil"
)

// RecordID identifies a timeline event or investment record. Older clients
// wrote numeric ids, so both JSON numbers and strings are accepted.
type RecordID string

// UnmarshalJSON accepts a string or a number.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// EventRecord is the stored and exported form of a timeline event. Value is
// a pointer so that a missing value can be told apart from zero.
type EventRecord struct {
	ID          RecordID `json:"id" yaml:"id"`
	Date        string   `json:"date" yaml:"date"`
	Type        string   `json:"type" yaml:"type"`
	Value       *float64 `json:"value" yaml:"value"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewRecordID returns a fresh identifier for a record created without one.
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}

// ToEvent converts a record into an engine event, rejecting anything the
// engine must not be handed: unparsable dates, unknown types and missing or
// non-finite values. A missing id is filled in.
func (r EventRecord) ToEvent() (events.Event, error) {
	id := strings.TrimSpace(string(r.ID))
	if id == "" {
		id = string(NewRecordID())
	}

	date, err := datetime.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return events.Event{}, fmt.Errorf("event %s has invalid date %q", id, r.Date)
	}

	kind, err := events.ParseKind(strings.TrimSpace(r.Type))
	if err != nil {
		return events.Event{}, fmt.Errorf("event %s: %w", id, err)
	}

	if r.Value == nil || !mathutil.IsFinite(*r.Value) {
		return events.Event{}, fmt.Errorf("event %s has no numeric value", id)
	}

	event := events.Event{
		ID:    id,
		Date:  date,
		Kind:  kind,
		Value: *r.Value,
		Note:  strings.TrimSpace(r.Description),
	}
	return event, event.Validate()
}

// FromEvent builds the record for an engine event.
func FromEvent(event events.Event) EventRecord {
	value := event.Value
	return EventRecord{
		ID:          RecordID(event.ID),
		Date:        datetime.Format(event.Date),
		Type:        string(event.Kind),
		Value:       &value,
		Description: event.Note,
	}
}

// RecordsToEvents converts records into engine events in their original
// order. Records that cannot be converted are skipped and described in the
// returned warnings.
func RecordsToEvents(records []EventRecord) ([]events.Event, []string) {
	converted := make([]events.Event, 0, len(records))
	var warnings []string
	for i, record := range records {
		event, err := record.ToEvent()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping timeline event %d: %v", i+1, err))
			continue
		}
		converted = append(converted, event)
	}
	return converted, warnings
}

// EventsToRecords converts engine events back into records.
func EventsToRecords(evs []events.Event) []EventRecord {
	records := make([]EventRecord, 0, len(evs))
	for _, event := range evs {
		records = append(records, FromEvent(event))
	}
	return records
}

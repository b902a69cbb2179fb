// Package snapshot exports and imports the JSON document that carries a
// complete mortgage analysis: the mortgage record, the timeline events and
// the investments.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
)

// ImportFailedMessage is shown to users when a document cannot be imported.
const ImportFailedMessage = "Failed to import data. Please check the file format."

var (
	jsonNull       = json.RawMessage("null")
	jsonEmptyArray = json.RawMessage("[]")
)

// Records holds the three persisted records as raw JSON. A nil field means
// the record is absent.
type Records struct {
	MortgageData   json.RawMessage
	TimelineEvents json.RawMessage
	Investments    json.RawMessage
}

// Source provides the records to export.
type Source interface {
	Snapshot(ctx context.Context) (Records, error)
}

// Sink wholesale replaces the persisted records with an imported set.
type Sink interface {
	Replace(ctx context.Context, records Records) error
}

// Document is the exported file.
type Document struct {
	MortgageData   json.RawMessage `json:"mortgageData"`
	TimelineEvents json.RawMessage `json:"timelineEvents"`
	Investments    json.RawMessage `json:"investments"`
	ExportDate     string          `json:"exportDate"`
	Version        string          `json:"version"`
}

// ImportError is a recoverable import failure. Message is safe to show to
// users; Err is the underlying cause.
type ImportError struct {
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewDocument builds an export document from records. A missing mortgage
// record exports as null, missing lists as empty arrays.
func NewDocument(records Records, now time.Time) *Document {
	doc := &Document{
		MortgageData:   orDefault(records.MortgageData, jsonNull),
		TimelineEvents: orDefault(records.TimelineEvents, jsonEmptyArray),
		Investments:    orDefault(records.Investments, jsonEmptyArray),
		ExportDate:     now.UTC().Format(time.RFC3339Nano),
		Version:        constants.SnapshotVersion,
	}
	return doc
}

// Export reads the records from src and builds the document.
func Export(ctx context.Context, src Source, now time.Time) (*Document, error) {
	records, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records for export: %w", err)
	}
	return NewDocument(records, now), nil
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FileName is the suggested download name for an export made at now.
func FileName(now time.Time) string {
	return constants.SnapshotFilePrefix + now.UTC().Format(constants.DateLayout) + ".json"
}

// Parse decodes an imported document into records. The document must be a
// JSON object; beyond that only presence is checked. Lists that are not
// arrays are ignored, as is a null mortgage record.
func Parse(data []byte) (Records, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Records{}, &ImportError{Message: ImportFailedMessage, Err: err}
	}
	if top == nil {
		return Records{}, &ImportError{Message: ImportFailedMessage, Err: fmt.Errorf("document is not a JSON object")}
	}

	var records Records
	if raw, ok := top["mortgageData"]; ok && !isNull(raw) {
		records.MortgageData = raw
	}
	if raw, ok := top["timelineEvents"]; ok && isArray(raw) {
		records.TimelineEvents = raw
	}
	if raw, ok := top["investments"]; ok && isArray(raw) {
		records.Investments = raw
	}
	return records, nil
}

// Import parses data and hands the records to sink in one replacement, so a
// failed import leaves the existing records untouched.
func Import(ctx context.Context, sink Sink, data []byte) (Records, error) {
	records, err := Parse(data)
	if err != nil {
		return Records{}, err
	}
	if err := sink.Replace(ctx, records); err != nil {
		return Records{}, &ImportError{Message: ImportFailedMessage, Err: err}
	}
	return records, nil
}

// Decoded is the typed form of a set of records.
type Decoded struct {
	Mortgage    *adapters.MortgageData
	Events      []adapters.EventRecord
	Investments []finance.Investment
}

// Decode unmarshals each present record into its typed form.
func (r Records) Decode() (Decoded, error) {
	var decoded Decoded
	if len(r.MortgageData) > 0 && !isNull(r.MortgageData) {
		var data adapters.MortgageData
		if err := json.Unmarshal(r.MortgageData, &data); err != nil {
			return Decoded{}, fmt.Errorf("invalid mortgageData: %w", err)
		}
		decoded.Mortgage = &data
	}
	if len(r.TimelineEvents) > 0 {
		if err := json.Unmarshal(r.TimelineEvents, &decoded.Events); err != nil {
			return Decoded{}, fmt.Errorf("invalid timelineEvents: %w", err)
		}
	}
	if len(r.Investments) > 0 {
		if err := json.Unmarshal(r.Investments, &decoded.Investments); err != nil {
			return Decoded{}, fmt.Errorf("invalid investments: %w", err)
		}
	}
	return decoded, nil
}

func orDefault(raw, fallback json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fallback
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/snapshot"
	"go.uber.org/zap"
)

// Repository reads and writes the typed records over a Storage. It
// satisfies snapshot.Source and snapshot.Sink.
type Repository struct {
	storage Storage
	logger  *zap.Logger

	// Serialises read-modify-write of the events list.
	mu sync.Mutex
}

// NewRepository wraps storage.
func NewRepository(logger *zap.Logger, storage Storage) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{storage: storage, logger: logger}
}

// LoadMortgage returns the stored mortgage record, or nil when none is
// stored.
func (r *Repository) LoadMortgage(ctx context.Context) (*adapters.MortgageData, error) {
	var data adapters.MortgageData
	ok, err := r.load(ctx, MortgageDataKey, &data)
	if err != nil || !ok {
		return nil, err
	}
	return &data, nil
}

// SaveMortgage stores the mortgage record.
func (r *Repository) SaveMortgage(ctx context.Context, data adapters.MortgageData) error {
	return r.save(ctx, MortgageDataKey, data)
}

// LoadEvents returns the stored timeline events in their stored order.
func (r *Repository) LoadEvents(ctx context.Context) ([]adapters.EventRecord, error) {
	records := []adapters.EventRecord{}
	if _, err := r.load(ctx, TimelineEventsKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveEvents replaces the stored timeline events.
func (r *Repository) SaveEvents(ctx context.Context, records []adapters.EventRecord) error {
	if records == nil {
		records = []adapters.EventRecord{}
	}
	return r.save(ctx, TimelineEventsKey, records)
}

// AddEvent appends record to the stored events, assigning an id when it has
// none, and returns the stored record.
func (r *Repository) AddEvent(ctx context.Context, record adapters.EventRecord) (adapters.EventRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(string(record.ID)) == "" {
		record.ID = adapters.NewRecordID()
	}

	records, err := r.LoadEvents(ctx)
	if err != nil {
		return adapters.EventRecord{}, err
	}
	records = append(records, record)
	if err := r.SaveEvents(ctx, records); err != nil {
		return adapters.EventRecord{}, err
	}

	r.logger.Debug("timeline event added",
		zap.String("op", "store.AddEvent"),
		zap.String("id", string(record.ID)),
		zap.String("type", record.Type),
	)
	return record, nil
}

// DeleteEvent removes every stored event with the given id. It reports
// whether anything was removed.
func (r *Repository) DeleteEvent(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.LoadEvents(ctx)
	if err != nil {
		return false, err
	}

	kept := records[:0]
	for _, record := range records {
		if string(record.ID) != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	return true, r.SaveEvents(ctx, kept)
}

// LoadInvestments returns the stored investments.
func (r *Repository) LoadInvestments(ctx context.Context) ([]finance.Investment, error) {
	investments := []finance.Investment{}
	if _, err := r.load(ctx, InvestmentsKey, &investments); err != nil {
		return nil, err
	}
	return investments, nil
}

// SaveInvestments replaces the stored investments.
func (r *Repository) SaveInvestments(ctx context.Context, investments []finance.Investment) error {
	if investments == nil {
		investments = []finance.Investment{}
	}
	return r.save(ctx, InvestmentsKey, investments)
}

// Clear removes every record.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.storage.Delete(ctx, Keys...); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	r.logger.Info("all records cleared",
		zap.String("op", "store.Clear"),
	)
	return nil
}

// Snapshot returns the raw stored records.
func (r *Repository) Snapshot(ctx context.Context) (snapshot.Records, error) {
	var records snapshot.Records
	for _, field := range []struct {
		key string
		dst *json.RawMessage
	}{
		{MortgageDataKey, &records.MortgageData},
		{TimelineEventsKey, &records.TimelineEvents},
		{InvestmentsKey, &records.Investments},
	} {
		value, ok, err := r.storage.Get(ctx, field.key)
		if err != nil {
			return snapshot.Records{}, fmt.Errorf("failed to read %s: %w", field.key, err)
		}
		if ok {
			*field.dst = value
		}
	}
	return records, nil
}

// Replace swaps every stored record for the given set in one step. Records
// absent from the set are removed.
func (r *Repository) Replace(ctx context.Context, records snapshot.Records) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := map[string][]byte{
		MortgageDataKey:   nilIfEmpty(records.MortgageData),
		TimelineEventsKey: nilIfEmpty(records.TimelineEvents),
		InvestmentsKey:    nilIfEmpty(records.Investments),
	}
	if err := r.storage.ReplaceAll(ctx, values); err != nil {
		return fmt.Errorf("failed to replace records: %w", err)
	}

	r.logger.Info("records replaced",
		zap.String("op", "store.Replace"),
		zap.Bool("mortgage", values[MortgageDataKey] != nil),
		zap.Bool("events", values[TimelineEventsKey] != nil),
		zap.Bool("investments", values[InvestmentsKey] != nil),
	)
	return nil
}

func (r *Repository) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	value, ok, err := r.storage.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return false, fmt.Errorf("stored %s is not valid JSON: %w", key, err)
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.storage.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func nilIfEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

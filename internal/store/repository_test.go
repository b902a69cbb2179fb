package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/snapshot"
	"github.com/iwvelando/mortgage-ledger/pkg/testutil"
)

func TestRepositoryEmpty(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil, NewMemoryStore())

	m, err := repo.LoadMortgage(ctx)
	if err != nil || m != nil {
		t.Errorf("LoadMortgage() = %v, %v; expected nil, nil", m, err)
	}
	evs, err := repo.LoadEvents(ctx)
	if err != nil || evs == nil || len(evs) != 0 {
		t.Errorf("LoadEvents() = %v, %v; expected empty slice", evs, err)
	}
	investments, err := repo.LoadInvestments(ctx)
	if err != nil || investments == nil || len(investments) != 0 {
		t.Errorf("LoadInvestments() = %v, %v; expected empty slice", investments, err)
	}

	records, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if records.MortgageData != nil || records.TimelineEvents != nil || records.Investments != nil {
		t.Errorf("Snapshot() of empty store = %+v", records)
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil, NewMemoryStore())

	mortgage := adapters.MortgageData{
		Principal:    300000,
		InterestRate: 5.5,
		TermYears:    25,
		StartDate:    "2024-03-01",
		PaymentDay:   1,
		InterestDay:  1,
	}
	if err := repo.SaveMortgage(ctx, mortgage); err != nil {
		t.Fatalf("SaveMortgage() error = %v", err)
	}
	got, err := repo.LoadMortgage(ctx)
	if err != nil || got == nil || *got != mortgage {
		t.Errorf("LoadMortgage() = %+v, %v", got, err)
	}

	investments := []finance.Investment{{ID: "i1", Name: "Fund", Type: finance.ETF, Amount: 1000}}
	if err := repo.SaveInvestments(ctx, investments); err != nil {
		t.Fatalf("SaveInvestments() error = %v", err)
	}
	loaded, err := repo.LoadInvestments(ctx)
	if err != nil || len(loaded) != 1 || loaded[0].Name != "Fund" {
		t.Errorf("LoadInvestments() = %+v, %v", loaded, err)
	}
}

func TestRepositoryAddAndDeleteEvent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil, NewMemoryStore())

	added, err := repo.AddEvent(ctx, adapters.EventRecord{Date: "2025-01-01", Type: "deposit", Value: testutil.Value(500)})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if added.ID == "" {
		t.Error("AddEvent() did not assign an id")
	}

	if _, err := repo.AddEvent(ctx, adapters.EventRecord{ID: "keep", Date: "2025-02-01", Type: "redraw", Value: testutil.Value(100)}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	evs, err := repo.LoadEvents(ctx)
	if err != nil || len(evs) != 2 {
		t.Fatalf("LoadEvents() = %v, %v; expected 2 events", evs, err)
	}
	if evs[0].ID != added.ID || evs[1].ID != "keep" {
		t.Errorf("events out of insertion order: %+v", evs)
	}

	removed, err := repo.DeleteEvent(ctx, string(added.ID))
	if err != nil || !removed {
		t.Errorf("DeleteEvent() = %v, %v; expected true", removed, err)
	}
	removed, err = repo.DeleteEvent(ctx, "nope")
	if err != nil || removed {
		t.Errorf("DeleteEvent(nope) = %v, %v; expected false", removed, err)
	}

	evs, _ = repo.LoadEvents(ctx)
	if len(evs) != 1 || evs[0].ID != "keep" {
		t.Errorf("remaining events = %+v", evs)
	}
}

func TestRepositoryReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil, NewMemoryStore())

	if err := repo.SaveInvestments(ctx, []finance.Investment{{Name: "Old", Amount: 1}}); err != nil {
		t.Fatal(err)
	}

	records := snapshot.Records{
		MortgageData:   json.RawMessage(`{"principal":1000,"interestRate":0,"termYears":1,"startDate":"2025-01-01"}`),
		TimelineEvents: json.RawMessage(`[{"id":7,"date":"2025-06-01","type":"deposit","value":10}]`),
	}
	if err := repo.Replace(ctx, records); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	investments, err := repo.LoadInvestments(ctx)
	if err != nil || len(investments) != 0 {
		t.Errorf("investments after Replace = %+v, %v; expected none", investments, err)
	}
	evs, err := repo.LoadEvents(ctx)
	if err != nil || len(evs) != 1 || evs[0].ID != "7" {
		t.Errorf("events after Replace = %+v, %v", evs, err)
	}

	got, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if string(got.MortgageData) != string(records.MortgageData) {
		t.Errorf("Snapshot mortgage = %s", got.MortgageData)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if m, _ := repo.LoadMortgage(ctx); m != nil {
		t.Errorf("mortgage still present after Clear: %+v", m)
	}
}

func TestRepositoryImportThroughSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(nil, NewMemoryStore())

	doc := []byte(`{"mortgageData":{"principal":5000,"interestRate":3,"termYears":2,"startDate":"2025-01-01"},
		"timelineEvents":[],"investments":[{"id":"a","name":"Cash","type":"savings","amount":100}],
		"exportDate":"2025-01-01T00:00:00Z","version":"1.0"}`)
	if _, err := snapshot.Import(ctx, repo, doc); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	m, err := repo.LoadMortgage(ctx)
	if err != nil || m == nil || m.Principal != 5000 {
		t.Errorf("LoadMortgage() after import = %+v, %v", m, err)
	}

	exported, err := snapshot.Export(ctx, repo, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(exported.TimelineEvents) != "[]" {
		t.Errorf("exported events = %s", exported.TimelineEvents)
	}

	if _, err := snapshot.Import(ctx, repo, []byte(`[1,2]`)); err == nil {
		t.Error("Import() of an array expected error")
	}
	if m, _ := repo.LoadMortgage(ctx); m == nil {
		t.Error("failed import must leave existing records untouched")
	}
}

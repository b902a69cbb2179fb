// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
)

// StandardMortgage is a 400,000 loan at 3.5% over 30 years starting
// 2024-01-01 with payments and interest on the first.
func StandardMortgage() adapters.MortgageData {
	return adapters.MortgageData{
		Principal:    400000,
		InterestRate: 3.5,
		TermYears:    30,
		StartDate:    "2024-01-01",
		PaymentDay:   1,
		InterestDay:  1,
	}
}

// Value returns a pointer to v for building event records.
func Value(v float64) *float64 {
	return &v
}

// FindEntry returns the first ledger entry of the given type.
// Returns nil if there is none.
func FindEntry(ledger []mortgage.LedgerEntry, entryType mortgage.EntryType) *mortgage.LedgerEntry {
	for i := range ledger {
		if ledger[i].Type == entryType {
			return &ledger[i]
		}
	}
	return nil
}

// CountEntries counts the ledger entries of the given type.
func CountEntries(ledger []mortgage.LedgerEntry, entryType mortgage.EntryType) int {
	n := 0
	for _, entry := range ledger {
		if entry.Type == entryType {
			n++
		}
	}
	return n
}

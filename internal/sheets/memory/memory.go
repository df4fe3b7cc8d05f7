// Package memory is an in-process ledger used when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"agency/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
}

var _ sheets.Ledger = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// Append stores the row and returns a synthetic row reference.
func (l *Ledger) Append(_ context.Context, row sheets.LedgerRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, row)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

func (l *Ledger) Contains(_ context.Context, row sheets.LedgerRow) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.rows {
		if r.RecordID == row.RecordID {
			return true, nil
		}
	}
	return false, nil
}

// Rows returns a copy of the appended rows.
func (l *Ledger) Rows() []sheets.LedgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.LedgerRow(nil), l.rows...)
}

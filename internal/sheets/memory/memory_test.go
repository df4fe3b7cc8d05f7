package memory

import (
	"context"
	"testing"
	"time"

	"agency/internal/core"
	"agency/internal/sheets"
)

func TestLedgerAppendAndContains(t *testing.T) {
	ctx := context.Background()
	l := New()
	row := sheets.LedgerRow{
		Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Kind:        core.KindRevenue,
		Description: "Site",
		Amount:      150.5,
		RecordID:    "r1",
	}

	ok, err := l.Contains(ctx, row)
	if err != nil || ok {
		t.Fatalf("empty ledger: ok=%v err=%v", ok, err)
	}

	ref, err := l.Append(ctx, row)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	ok, err = l.Contains(ctx, sheets.LedgerRow{RecordID: "r1"})
	if err != nil || !ok {
		t.Fatalf("expected r1 to be present: ok=%v err=%v", ok, err)
	}
	if got := l.Rows(); len(got) != 1 || got[0].Description != "Site" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestLedgerRejectsInvalidRows(t *testing.T) {
	l := New()
	if _, err := l.Append(context.Background(), sheets.LedgerRow{Kind: core.KindClient, RecordID: "c1", Date: time.Now()}); err == nil {
		t.Fatal("expected an error for a client row")
	}
	if _, err := l.Append(context.Background(), sheets.LedgerRow{Kind: core.KindExpense, Date: time.Now()}); err == nil {
		t.Fatal("expected an error for a row without id")
	}
	if len(l.Rows()) != 0 {
		t.Fatal("invalid rows must not be stored")
	}
}

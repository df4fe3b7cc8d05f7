//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"agency/internal/core"
	ports "agency/internal/sheets"
)

// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_LedgerAppend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, Options{
		SpreadsheetID:      spreadsheetID,
		LedgerSheet:        os.Getenv("LEDGER_SHEET_NAME"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	row := ports.LedgerRow{
		Date:        time.Now(),
		Kind:        core.KindRevenue,
		Description: "integration test",
		Category:    "test",
		Amount:      0.01,
		RecordedBy:  "integration",
		RecordID:    "it-" + time.Now().Format("20060102150405.000000000"),
	}

	ref, err := client.Append(ctx, row)
	if err != nil {
		t.Fatalf("Failed to append row: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	found, err := client.Contains(ctx, row)
	if err != nil {
		t.Fatalf("Failed to read record ids: %v", err)
	}
	if !found {
		t.Errorf("record %s not found after append", row.RecordID)
	}
}

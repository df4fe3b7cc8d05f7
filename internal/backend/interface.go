package backend

import (
	"context"

	"agency/internal/docstore"
	"agency/internal/services"
	"agency/internal/sheets"
)

// CleanupFunc releases resources opened by a factory.
type CleanupFunc func() error

// BackendResult is the document store the gateway writes to, plus the
// optional ledger publisher. Publisher is nil when AMQP is not configured.
type BackendResult struct {
	Store     docstore.Store
	Publisher services.LedgerPublisher
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateLedger returns the Google Sheets ledger when a spreadsheet is
	// configured and an in-memory ledger otherwise.
	CreateLedger(ctx context.Context, config Config) (sheets.Ledger, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Ledger events, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger spreadsheet, optional
	GoogleSpreadsheetID      string
	LedgerSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

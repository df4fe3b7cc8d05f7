// Package sheets mirrors revenues and expenses into a spreadsheet ledger.
package sheets

import (
	"context"
	"errors"
	"strings"
	"time"

	"agency/internal/core"
)

var ErrInvalidRow = errors.New("invalid ledger row")

// LedgerRow is one mirrored record. Amount is signed: expenses are negative.
type LedgerRow struct {
	Date        time.Time
	Kind        core.Kind
	Description string
	Category    string
	Amount      float64
	RecordedBy  string
	RecordID    string
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		Append(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}

	// LedgerIndex answers whether a record was already mirrored, so a
	// redelivered event does not produce a second row.
	LedgerIndex interface {
		Contains(ctx context.Context, row LedgerRow) (bool, error)
	}

	Ledger interface {
		LedgerWriter
		LedgerIndex
	}
)

func (r LedgerRow) Validate() error {
	if strings.TrimSpace(r.RecordID) == "" {
		return errors.Join(ErrInvalidRow, errors.New("missing record id"))
	}
	if r.Kind != core.KindRevenue && r.Kind != core.KindExpense {
		return errors.Join(ErrInvalidRow, errors.New("unsupported kind "+string(r.Kind)))
	}
	if r.Date.IsZero() {
		return errors.Join(ErrInvalidRow, errors.New("missing date"))
	}
	return nil
}

// Values renders the row as spreadsheet cells A:G.
func (r LedgerRow) Values() []any {
	return []any{
		r.Date.UTC().Format("2006-01-02"),
		KindLabel(r.Kind),
		r.Description,
		r.Category,
		r.Amount,
		r.RecordedBy,
		r.RecordID,
	}
}

// KindLabel is the column B text for a kind.
func KindLabel(k core.Kind) string {
	switch k {
	case core.KindRevenue:
		return "Receita"
	case core.KindExpense:
		return "Despesa"
	default:
		return string(k)
	}
}

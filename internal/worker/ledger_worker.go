// Package worker mirrors stored revenues and expenses into the spreadsheet ledger.
package worker

import (
	"context"
	"errors"
	"fmt"

	"agency/internal/amqp"
	"agency/internal/core"
	"agency/internal/docstore"
	applog "agency/internal/log"
	"agency/internal/normalize"
	"agency/internal/sheets"
)

// LedgerWorker turns ledger events into spreadsheet rows. A record already
// present in the ledger is skipped, so redelivered events are harmless.
type LedgerWorker struct {
	store  docstore.Reader
	ledger sheets.Ledger
	logger *applog.Logger
}

func NewLedgerWorker(store docstore.Reader, ledger sheets.Ledger, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.Default(applog.ComponentWorker)
	}
	return &LedgerWorker{store: store, ledger: ledger, logger: logger.WithComponent(applog.ComponentWorker)}
}

// HandleLedgerEvent mirrors the record named by msg. Events for records that
// do not exist or cannot be decoded are dropped with a warning; returning an
// error would requeue them forever. Store and ledger errors are returned.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		applog.FieldKind, string(msg.Kind),
		applog.FieldDocID, msg.ID)

	snap, err := w.store.Get(ctx, msg.Kind.Collection(), msg.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		w.drop(ctx, msg, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s %s: %w", msg.Kind, msg.ID, err)
	}
	row, err := rowFrom(msg.Kind, snap)
	if err != nil {
		w.drop(ctx, msg, err)
		return nil
	}
	_, err = w.mirror(ctx, row)
	return err
}

func (w *LedgerWorker) drop(ctx context.Context, msg *amqp.LedgerEvent, err error) {
	w.logger.WarnContext(ctx, "Dropping ledger event",
		applog.FieldKind, string(msg.Kind),
		applog.FieldDocID, msg.ID,
		applog.FieldError, err)
}

// Reconcile mirrors every stored revenue and expense missing from the
// ledger. It recovers from events lost while the worker was down.
func (w *LedgerWorker) Reconcile(ctx context.Context) (int, error) {
	appended := 0
	var errs []error
	for _, kind := range []core.Kind{core.KindRevenue, core.KindExpense} {
		snaps, err := w.store.Query(ctx, docstore.Query{
			Collection: kind.Collection(),
			OrderBy:    "date",
			Direction:  docstore.Asc,
		})
		if err != nil {
			return appended, fmt.Errorf("list %s: %w", kind.Collection(), err)
		}
		for _, snap := range snaps {
			row, err := rowFrom(kind, snap)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			added, err := w.mirror(ctx, row)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if added {
				appended++
			}
		}
	}

	w.logger.InfoContext(ctx, "Ledger reconcile completed",
		applog.FieldCount, appended,
		"errors", len(errs))
	return appended, errors.Join(errs...)
}

func (w *LedgerWorker) mirror(ctx context.Context, row sheets.LedgerRow) (bool, error) {
	found, err := w.ledger.Contains(ctx, row)
	if err != nil {
		return false, fmt.Errorf("check ledger for %s: %w", row.RecordID, err)
	}
	if found {
		w.logger.DebugContext(ctx, "Record already in ledger",
			applog.FieldKind, string(row.Kind),
			applog.FieldDocID, row.RecordID)
		return false, nil
	}

	ref, err := w.ledger.Append(ctx, row)
	if err != nil {
		return false, fmt.Errorf("append %s to ledger: %w", row.RecordID, err)
	}
	w.logger.InfoContext(ctx, "Record mirrored to ledger",
		applog.FieldKind, string(row.Kind),
		applog.FieldDocID, row.RecordID,
		applog.FieldLedgerRef, ref)
	return true, nil
}

// rowFrom builds the ledger row for a stored record. Expenses are negative.
func rowFrom(kind core.Kind, snap docstore.Snapshot) (sheets.LedgerRow, error) {
	switch kind {
	case core.KindRevenue:
		r, err := normalize.RevenueFrom(snap)
		if err != nil {
			return sheets.LedgerRow{}, fmt.Errorf("decode revenue %s: %w", snap.ID, err)
		}
		return sheets.LedgerRow{
			Date: r.Date, Kind: kind, Description: r.Description, Category: r.Category,
			Amount: r.Amount, RecordedBy: r.RecordedBy, RecordID: r.ID,
		}, nil
	case core.KindExpense:
		e, err := normalize.ExpenseFrom(snap)
		if err != nil {
			return sheets.LedgerRow{}, fmt.Errorf("decode expense %s: %w", snap.ID, err)
		}
		return sheets.LedgerRow{
			Date: e.Date, Kind: kind, Description: e.Description, Category: e.Category,
			Amount: -e.Amount, RecordedBy: e.RecordedBy, RecordID: e.ID,
		}, nil
	default:
		return sheets.LedgerRow{}, fmt.Errorf("unsupported ledger kind %q", kind)
	}
}

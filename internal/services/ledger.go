package services

import (
	"context"

	"agency/internal/core"
	applog "agency/internal/log"
)

// publishLedger is best effort: the record is already stored.
func (g *Gateway) publishLedger(ctx context.Context, kind core.Kind, id string) {
	if g.publisher == nil {
		g.logger.DebugContext(ctx, "Ledger publisher not configured, skipping event",
			applog.FieldKind, string(kind), applog.FieldDocID, id)
		return
	}
	if err := g.publisher.PublishLedgerEvent(ctx, kind, id); err != nil {
		g.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldKind, string(kind),
			applog.FieldDocID, id,
			applog.FieldError, err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore"
	applog "agency/internal/log"
)

// LedgerPublisher announces new revenues and expenses to the ledger mirror.
type LedgerPublisher interface {
	PublishLedgerEvent(ctx context.Context, kind core.Kind, id string) error
}

// Gateway is the only path between callers and the document store. Writes
// require an identity and return store failures; lists wait for the session
// to resolve and degrade to an empty result.
type Gateway struct {
	store     docstore.Store
	publisher LedgerPublisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

type Option func(*Gateway)

// WithLedgerPublisher enables ledger events after revenue and expense creation.
func WithLedgerPublisher(p LedgerPublisher) Option {
	return func(g *Gateway) { g.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(g *Gateway) { g.logger = l.WithComponent(applog.ComponentGateway) }
}

func NewGateway(store docstore.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		logger: applog.Default(applog.ComponentGateway),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.events = applog.NewStructuredLogger(g.logger)
	return g
}

// recorder returns the provenance label of the acting identity.
func recorder(sess *auth.Session) (string, error) {
	id, ok := sess.Identity()
	if !ok {
		return "", core.ErrUnauthenticated
	}
	return id.Recorder(), nil
}

func (g *Gateway) add(ctx context.Context, kind core.Kind, doc any, recordedBy string) (string, error) {
	id, err := g.store.Add(ctx, kind.Collection(), doc)
	if err != nil {
		g.events.LogError(ctx, "Failed to create record", err, applog.OpCreate,
			applog.NewFields().WithRecord(string(kind), ""))
		return "", fmt.Errorf("%w: create %s: %w", core.ErrStoreFailure, kind, err)
	}
	g.events.LogRecordCreated(ctx, string(kind), id, recordedBy)
	return id, nil
}

// get reads one record; failures wrap ErrStoreFailure like writes do.
func (g *Gateway) get(ctx context.Context, kind core.Kind, id string) (docstore.Snapshot, error) {
	snap, err := g.store.Get(ctx, kind.Collection(), id)
	if err != nil {
		g.events.LogError(ctx, "Failed to read record", err, applog.OpUpdate,
			applog.NewFields().WithRecord(string(kind), id))
		return docstore.Snapshot{}, fmt.Errorf("%w: get %s %s: %w", core.ErrStoreFailure, kind, id, err)
	}
	return snap, nil
}

// patch overwrites top-level fields of an existing record. An empty patch
// writes nothing but still fails for a missing record.
func (g *Gateway) patch(ctx context.Context, kind core.Kind, id string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := g.get(ctx, kind, id)
		return err
	}
	if err := g.store.Update(ctx, kind.Collection(), id, fields); err != nil {
		g.events.LogError(ctx, "Failed to update record", err, applog.OpUpdate,
			applog.NewFields().WithRecord(string(kind), id))
		return fmt.Errorf("%w: update %s %s: %w", core.ErrStoreFailure, kind, id, err)
	}
	g.logger.DebugContext(ctx, "Record updated",
		applog.FieldKind, string(kind),
		applog.FieldDocID, id,
		applog.FieldCount, len(fields))
	return nil
}

// list runs q and reconstructs every snapshot. Only a cancelled wait on the
// session gate is returned as an error; everything else yields an empty slice.
func list[T any](ctx context.Context, g *Gateway, sess *auth.Session, kind core.Kind, q docstore.Query, from func(docstore.Snapshot) (T, error)) ([]T, error) {
	if err := sess.WaitReady(ctx); err != nil {
		return nil, err
	}
	if _, ok := sess.Identity(); !ok {
		g.logger.DebugContext(ctx, "No identity, returning empty list", applog.FieldKind, string(kind))
		return []T{}, nil
	}

	q.Collection = kind.Collection()
	snaps, err := g.store.Query(ctx, q)
	if err != nil {
		g.events.LogError(ctx, "Failed to list records", err, applog.OpList,
			applog.NewFields().WithRecord(string(kind), ""))
		return []T{}, nil
	}

	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		rec, err := from(s)
		if err != nil {
			g.events.LogError(ctx, "Failed to reconstruct record", err, applog.OpList,
				applog.NewFields().WithRecord(string(kind), s.ID))
			return []T{}, nil
		}
		out = append(out, rec)
	}
	return out, nil
}

// IsNotFound reports whether err came from a write on a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}

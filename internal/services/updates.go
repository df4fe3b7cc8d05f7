package services

import (
	"context"
	"fmt"
	"time"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore"
	"agency/internal/normalize"
)

// UpdateProjectStatus sets the status. The delivery date is written only when
// the new status is delivered and a date is given; other transitions leave it.
func (g *Gateway) UpdateProjectStatus(ctx context.Context, sess *auth.Session, id string, status core.ProjectStatus, deliveryDate *time.Time) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: project status %q", core.ErrInvalidStatus, status)
	}
	fields := map[string]any{"status": status}
	if status == core.ProjectDelivered && deliveryDate != nil && !deliveryDate.IsZero() {
		fields["deliveryDate"] = docstore.FromTime(*deliveryDate)
	}
	return g.patch(ctx, core.KindProject, id, fields)
}

// SetActivityCompleted flips the completion flag, stamping completedAt with
// the current time when true and clearing it when false.
func (g *Gateway) SetActivityCompleted(ctx context.Context, sess *auth.Session, id string, completed bool) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	var completedAt *docstore.Timestamp
	if completed {
		now := docstore.Now()
		completedAt = &now
	}
	return g.patch(ctx, core.KindProjectActivity, id, map[string]any{
		"completed":   completed,
		"completedAt": completedAt,
	})
}

func (g *Gateway) UpdateBudgetStatus(ctx context.Context, sess *auth.Session, id string, status core.BudgetStatus) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: budget status %q", core.ErrInvalidStatus, status)
	}
	return g.patch(ctx, core.KindBudget, id, map[string]any{"status": status})
}

func (g *Gateway) UpdateReceiptStatus(ctx context.Context, sess *auth.Session, id string, status core.ReceiptStatus) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: receipt status %q", core.ErrInvalidStatus, status)
	}
	return g.patch(ctx, core.KindReceipt, id, map[string]any{"status": status})
}

// UpdateBudget writes only the fields set in p.
func (g *Gateway) UpdateBudget(ctx context.Context, sess *auth.Session, id string, p core.BudgetPatch) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	var current core.Budget
	if normalize.BudgetPatchDerivesTotal(p) {
		snap, err := g.get(ctx, core.KindBudget, id)
		if err != nil {
			return err
		}
		if current, err = normalize.BudgetFrom(snap); err != nil {
			return fmt.Errorf("%w: decode budget %s: %w", core.ErrStoreFailure, id, err)
		}
	}
	fields, err := normalize.BudgetPatchFields(p, current)
	if err != nil {
		return err
	}
	return g.patch(ctx, core.KindBudget, id, fields)
}

// UpdateReceipt writes only the fields set in p.
func (g *Gateway) UpdateReceipt(ctx context.Context, sess *auth.Session, id string, p core.ReceiptPatch) error {
	if _, err := recorder(sess); err != nil {
		return err
	}
	fields, err := normalize.ReceiptPatchFields(p)
	if err != nil {
		return err
	}
	return g.patch(ctx, core.KindReceipt, id, fields)
}

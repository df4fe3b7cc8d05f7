package normalize

import (
	"fmt"

	"agency/internal/core"

	"github.com/shopspring/decimal"
)

// BudgetPatchFields turns a partial budget update into the top-level fields
// to overwrite. Fields the patch does not set are absent from the result.
//
// When the patch changes items, subtotal or discount without an explicit
// total, subtotal and total are re-derived as BudgetDoc derives them, taking
// the values the patch leaves out from current.
func BudgetPatchFields(p core.BudgetPatch, current core.Budget) (map[string]any, error) {
	fields := map[string]any{}
	if p.Client != nil {
		fields["client"] = *p.Client
	}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, fmt.Errorf("%w: budget status %q", core.ErrInvalidStatus, *p.Status)
		}
		fields["status"] = *p.Status
	}

	subtotal := decimal.NewFromFloat(current.Subtotal)
	if p.Items != nil {
		items, sum, err := BudgetItems(p.Items)
		if err != nil {
			return nil, err
		}
		fields["items"] = items
		subtotal = sum
		fields["subtotal"] = sum.InexactFloat64()
	}
	subtotal, err := patchAmount(fields, "subtotal", p.Subtotal, subtotal)
	if err != nil {
		return nil, err
	}
	discount, err := patchAmount(fields, "discount", p.Discount, decimal.NewFromFloat(current.Discount))
	if err != nil {
		return nil, err
	}
	if _, err := patchAmount(fields, "total", p.Total, decimal.Zero); err != nil {
		return nil, err
	}
	_, explicitTotal := fields["total"]
	_, newSubtotal := fields["subtotal"]
	_, newDiscount := fields["discount"]
	if !explicitTotal && (newSubtotal || newDiscount) {
		total := subtotal.Sub(discount)
		if err := checkFinite(total); err != nil {
			return nil, fmt.Errorf("total: %w", err)
		}
		fields["total"] = total.InexactFloat64()
	}

	due, err := OptionalTimestamp(p.DueDate)
	if err != nil {
		return nil, fmt.Errorf("dueDate: %w", err)
	}
	if due != nil {
		fields["dueDate"] = *due
	}
	return fields, nil
}

// BudgetPatchDerivesTotal reports whether BudgetPatchFields may need the
// current budget to derive the total.
func BudgetPatchDerivesTotal(p core.BudgetPatch) bool {
	if p.Total != nil {
		return false
	}
	return p.Items != nil || p.Subtotal != nil || p.Discount != nil
}

// patchAmount writes v under name when it carries a value and returns the
// effective amount, which is fallback otherwise.
func patchAmount(fields map[string]any, name string, v any, fallback decimal.Decimal) (decimal.Decimal, error) {
	d, ok, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	if !ok {
		return fallback, nil
	}
	fields[name] = d.InexactFloat64()
	return d, nil
}

// ReceiptPatchFields is BudgetPatchFields for receipts.
func ReceiptPatchFields(p core.ReceiptPatch) (map[string]any, error) {
	fields := map[string]any{}
	if p.Client != nil {
		fields["client"] = *p.Client
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, fmt.Errorf("%w: receipt status %q", core.ErrInvalidStatus, *p.Status)
		}
		fields["status"] = *p.Status
	}
	paid, err := OptionalAmount(p.AmountPaid)
	if err != nil {
		return nil, fmt.Errorf("amountPaid: %w", err)
	}
	if paid != nil {
		fields["amountPaid"] = *paid
	}
	for name, v := range map[string]any{"paymentDate": p.PaymentDate, "dueDate": p.DueDate} {
		ts, err := OptionalTimestamp(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if ts != nil {
			fields[name] = *ts
		}
	}
	return fields, nil
}

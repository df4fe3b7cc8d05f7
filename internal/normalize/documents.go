package normalize

import (
	"fmt"

	"agency/internal/core"
	"agency/internal/docstore"

	"github.com/shopspring/decimal"
)

// Canonical documents as stored. Temporal fields are pointers so that a
// document read back with a missing field can be told apart from the epoch.
type (
	ClientDocument struct {
		Name         string              `json:"name"`
		Service      string              `json:"service"`
		Email        string              `json:"email"`
		Phone        string              `json:"phone"`
		Notes        string              `json:"notes"`
		RegisteredAt *docstore.Timestamp `json:"registeredAt"`
		RecordedBy   string              `json:"recordedBy"`
	}

	// EntryDocument holds a revenue or an expense.
	EntryDocument struct {
		Description string              `json:"description"`
		Amount      float64             `json:"amount"`
		Category    string              `json:"category"`
		Date        *docstore.Timestamp `json:"date"`
		RecordedBy  string              `json:"recordedBy"`
	}

	CredentialDocument struct {
		Site         string              `json:"site"`
		Username     string              `json:"username"`
		Password     string              `json:"password"`
		Notes        string              `json:"notes"`
		RegisteredAt *docstore.Timestamp `json:"registeredAt"`
		RecordedBy   string              `json:"recordedBy"`
	}

	ProjectDocument struct {
		Name          string              `json:"name"`
		Client        string              `json:"client"`
		Description   string              `json:"description"`
		Amount        *float64            `json:"amount"`
		Status        core.ProjectStatus  `json:"status"`
		StartDate     *docstore.Timestamp `json:"startDate"`
		EstimatedDate *docstore.Timestamp `json:"estimatedDate"`
		DeliveryDate  *docstore.Timestamp `json:"deliveryDate"`
		RecordedBy    string              `json:"recordedBy"`
	}

	ProjectActivityDocument struct {
		ProjectID   string              `json:"projectId"`
		Description string              `json:"description"`
		Completed   bool                `json:"completed"`
		CreatedAt   *docstore.Timestamp `json:"createdAt"`
		CompletedAt *docstore.Timestamp `json:"completedAt"`
		RecordedBy  string              `json:"recordedBy"`
	}

	BudgetItemDocument struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitAmount  float64 `json:"unitAmount"`
		Total       float64 `json:"total"`
	}

	BudgetDocument struct {
		Client     string               `json:"client"`
		Title      string               `json:"title"`
		Items      []BudgetItemDocument `json:"items"`
		Subtotal   float64              `json:"subtotal"`
		Discount   float64              `json:"discount"`
		Total      float64              `json:"total"`
		Status     core.BudgetStatus    `json:"status"`
		Notes      string               `json:"notes"`
		CreatedAt  *docstore.Timestamp  `json:"createdAt"`
		DueDate    *docstore.Timestamp  `json:"dueDate"`
		RecordedBy string               `json:"recordedBy"`
	}

	ReceiptDocument struct {
		Client      string              `json:"client"`
		Description string              `json:"description"`
		BudgetID    string              `json:"budgetId"`
		AmountPaid  float64             `json:"amountPaid"`
		Status      core.ReceiptStatus  `json:"status"`
		PaymentDate *docstore.Timestamp `json:"paymentDate"`
		DueDate     *docstore.Timestamp `json:"dueDate"`
		CreatedAt   *docstore.Timestamp `json:"createdAt"`
		RecordedBy  string              `json:"recordedBy"`
	}
)

func ClientDoc(in core.ClientInput, recordedBy string) (ClientDocument, error) {
	registered, err := creationStamp(in.RegisteredAt)
	if err != nil {
		return ClientDocument{}, fmt.Errorf("registeredAt: %w", err)
	}
	return ClientDocument{
		Name:         in.Name,
		Service:      in.Service,
		Email:        in.Email,
		Phone:        in.Phone,
		Notes:        in.Notes,
		RegisteredAt: &registered,
		RecordedBy:   recordedBy,
	}, nil
}

func RevenueDoc(in core.RevenueInput, recordedBy string) (EntryDocument, error) {
	return entryDoc(in.Description, in.Amount, in.Category, in.Date, recordedBy)
}

func ExpenseDoc(in core.ExpenseInput, recordedBy string) (EntryDocument, error) {
	return entryDoc(in.Description, in.Amount, in.Category, in.Date, recordedBy)
}

func entryDoc(description string, amount any, category string, date any, recordedBy string) (EntryDocument, error) {
	a, err := Amount(amount)
	if err != nil {
		return EntryDocument{}, fmt.Errorf("amount: %w", err)
	}
	d, err := Timestamp(date)
	if err != nil {
		return EntryDocument{}, fmt.Errorf("date: %w", err)
	}
	return EntryDocument{
		Description: description,
		Amount:      a,
		Category:    category,
		Date:        &d,
		RecordedBy:  recordedBy,
	}, nil
}

func CredentialDoc(in core.CredentialInput, recordedBy string) (CredentialDocument, error) {
	registered, err := creationStamp(in.RegisteredAt)
	if err != nil {
		return CredentialDocument{}, fmt.Errorf("registeredAt: %w", err)
	}
	return CredentialDocument{
		Site:         in.Site,
		Username:     in.Username,
		Password:     in.Password,
		Notes:        in.Notes,
		RegisteredAt: &registered,
		RecordedBy:   recordedBy,
	}, nil
}

func ProjectDoc(in core.ProjectInput, recordedBy string) (ProjectDocument, error) {
	status := in.Status
	if status == "" {
		status = core.ProjectPlanning
	}
	if !status.Valid() {
		return ProjectDocument{}, fmt.Errorf("%w: project status %q", core.ErrInvalidStatus, status)
	}
	amount, err := OptionalAmount(in.Amount)
	if err != nil {
		return ProjectDocument{}, fmt.Errorf("amount: %w", err)
	}
	start, err := Timestamp(in.StartDate)
	if err != nil {
		return ProjectDocument{}, fmt.Errorf("startDate: %w", err)
	}
	estimated, err := OptionalTimestamp(in.EstimatedDate)
	if err != nil {
		return ProjectDocument{}, fmt.Errorf("estimatedDate: %w", err)
	}
	delivery, err := OptionalTimestamp(in.DeliveryDate)
	if err != nil {
		return ProjectDocument{}, fmt.Errorf("deliveryDate: %w", err)
	}
	return ProjectDocument{
		Name:          in.Name,
		Client:        in.Client,
		Description:   in.Description,
		Amount:        amount,
		Status:        status,
		StartDate:     &start,
		EstimatedDate: estimated,
		DeliveryDate:  delivery,
		RecordedBy:    recordedBy,
	}, nil
}

func ProjectActivityDoc(in core.ProjectActivityInput, recordedBy string) (ProjectActivityDocument, error) {
	created, err := creationStamp(in.CreatedAt)
	if err != nil {
		return ProjectActivityDocument{}, fmt.Errorf("createdAt: %w", err)
	}
	completedAt, err := OptionalTimestamp(in.CompletedAt)
	if err != nil {
		return ProjectActivityDocument{}, fmt.Errorf("completedAt: %w", err)
	}
	return ProjectActivityDocument{
		ProjectID:   in.ProjectID,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   &created,
		CompletedAt: completedAt,
		RecordedBy:  recordedBy,
	}, nil
}

// BudgetDoc normalizes a budget. A missing line total is quantity times unit
// amount, a missing subtotal is the sum of line totals, a missing discount is
// zero and a missing total is subtotal minus discount.
func BudgetDoc(in core.BudgetInput, recordedBy string) (BudgetDocument, error) {
	status := in.Status
	if status == "" {
		status = core.BudgetDraft
	}
	if !status.Valid() {
		return BudgetDocument{}, fmt.Errorf("%w: budget status %q", core.ErrInvalidStatus, status)
	}
	items, sum, err := BudgetItems(in.Items)
	if err != nil {
		return BudgetDocument{}, err
	}
	subtotal, err := amountOr(in.Subtotal, sum)
	if err != nil {
		return BudgetDocument{}, fmt.Errorf("subtotal: %w", err)
	}
	discount, err := amountOr(in.Discount, decimal.Zero)
	if err != nil {
		return BudgetDocument{}, fmt.Errorf("discount: %w", err)
	}
	total, err := amountOr(in.Total, subtotal.Sub(discount))
	if err != nil {
		return BudgetDocument{}, fmt.Errorf("total: %w", err)
	}
	created, err := creationStamp(in.CreatedAt)
	if err != nil {
		return BudgetDocument{}, fmt.Errorf("createdAt: %w", err)
	}
	due, err := Timestamp(in.DueDate)
	if err != nil {
		return BudgetDocument{}, fmt.Errorf("dueDate: %w", err)
	}
	return BudgetDocument{
		Client:     in.Client,
		Title:      in.Title,
		Items:      items,
		Subtotal:   subtotal.InexactFloat64(),
		Discount:   discount.InexactFloat64(),
		Total:      total.InexactFloat64(),
		Status:     status,
		Notes:      in.Notes,
		CreatedAt:  &created,
		DueDate:    &due,
		RecordedBy: recordedBy,
	}, nil
}

// BudgetItems normalizes line items and returns the sum of their totals.
func BudgetItems(in []core.BudgetItemInput) ([]BudgetItemDocument, decimal.Decimal, error) {
	items := make([]BudgetItemDocument, 0, len(in))
	sum := decimal.Zero
	for i, it := range in {
		qty, ok, err := toDecimal(it.Quantity)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("items[%d].quantity: %w", i, err)
		}
		if !ok {
			qty = decimal.NewFromInt(1)
		}
		unit, _, err := toDecimal(it.UnitAmount)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("items[%d].unitAmount: %w", i, err)
		}
		total, err := amountOr(it.Total, qty.Mul(unit))
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("items[%d].total: %w", i, err)
		}
		sum = sum.Add(total)
		if err := checkFinite(sum); err != nil {
			return nil, decimal.Zero, fmt.Errorf("items: %w", err)
		}
		items = append(items, BudgetItemDocument{
			Description: it.Description,
			Quantity:    qty.InexactFloat64(),
			UnitAmount:  unit.InexactFloat64(),
			Total:       total.InexactFloat64(),
		})
	}
	return items, sum, nil
}

func amountOr(v any, fallback decimal.Decimal) (decimal.Decimal, error) {
	d, ok, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		if err := checkFinite(fallback); err != nil {
			return decimal.Zero, err
		}
		return fallback, nil
	}
	return d, nil
}

func ReceiptDoc(in core.ReceiptInput, recordedBy string) (ReceiptDocument, error) {
	status := in.Status
	if status == "" {
		status = core.ReceiptPending
	}
	if !status.Valid() {
		return ReceiptDocument{}, fmt.Errorf("%w: receipt status %q", core.ErrInvalidStatus, status)
	}
	paid, err := Amount(in.AmountPaid)
	if err != nil {
		return ReceiptDocument{}, fmt.Errorf("amountPaid: %w", err)
	}
	payment, err := Timestamp(in.PaymentDate)
	if err != nil {
		return ReceiptDocument{}, fmt.Errorf("paymentDate: %w", err)
	}
	due, err := OptionalTimestamp(in.DueDate)
	if err != nil {
		return ReceiptDocument{}, fmt.Errorf("dueDate: %w", err)
	}
	created, err := creationStamp(in.CreatedAt)
	if err != nil {
		return ReceiptDocument{}, fmt.Errorf("createdAt: %w", err)
	}
	return ReceiptDocument{
		Client:      in.Client,
		Description: in.Description,
		BudgetID:    in.BudgetID,
		AmountPaid:  paid,
		Status:      status,
		PaymentDate: &payment,
		DueDate:     due,
		CreatedAt:   &created,
		RecordedBy:  recordedBy,
	}, nil
}

package normalize

import (
	"fmt"

	"agency/internal/core"
	"agency/internal/docstore"
)

func decode(s docstore.Snapshot, v any) error {
	if err := s.DataTo(v); err != nil {
		return fmt.Errorf("decode document %s: %w", s.ID, err)
	}
	return nil
}

func ClientFrom(s docstore.Snapshot) (core.Client, error) {
	var d ClientDocument
	if err := decode(s, &d); err != nil {
		return core.Client{}, err
	}
	return core.Client{
		ID:           s.ID,
		Name:         d.Name,
		Service:      d.Service,
		Email:        d.Email,
		Phone:        d.Phone,
		Notes:        d.Notes,
		RegisteredAt: timeOrNow(d.RegisteredAt),
		RecordedBy:   d.RecordedBy,
	}, nil
}

func RevenueFrom(s docstore.Snapshot) (core.Revenue, error) {
	var d EntryDocument
	if err := decode(s, &d); err != nil {
		return core.Revenue{}, err
	}
	return core.Revenue{
		ID:          s.ID,
		Description: d.Description,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        timeOrNow(d.Date),
		RecordedBy:  d.RecordedBy,
	}, nil
}

func ExpenseFrom(s docstore.Snapshot) (core.Expense, error) {
	var d EntryDocument
	if err := decode(s, &d); err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          s.ID,
		Description: d.Description,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        timeOrNow(d.Date),
		RecordedBy:  d.RecordedBy,
	}, nil
}

func CredentialFrom(s docstore.Snapshot) (core.Credential, error) {
	var d CredentialDocument
	if err := decode(s, &d); err != nil {
		return core.Credential{}, err
	}
	return core.Credential{
		ID:           s.ID,
		Site:         d.Site,
		Username:     d.Username,
		Password:     d.Password,
		Notes:        d.Notes,
		RegisteredAt: timeOrNow(d.RegisteredAt),
		RecordedBy:   d.RecordedBy,
	}, nil
}

func ProjectFrom(s docstore.Snapshot) (core.Project, error) {
	var d ProjectDocument
	if err := decode(s, &d); err != nil {
		return core.Project{}, err
	}
	return core.Project{
		ID:            s.ID,
		Name:          d.Name,
		Client:        d.Client,
		Description:   d.Description,
		Amount:        d.Amount,
		Status:        d.Status,
		StartDate:     timeOrNow(d.StartDate),
		EstimatedDate: timePtr(d.EstimatedDate),
		DeliveryDate:  timePtr(d.DeliveryDate),
		RecordedBy:    d.RecordedBy,
	}, nil
}

func ProjectActivityFrom(s docstore.Snapshot) (core.ProjectActivity, error) {
	var d ProjectActivityDocument
	if err := decode(s, &d); err != nil {
		return core.ProjectActivity{}, err
	}
	return core.ProjectActivity{
		ID:          s.ID,
		ProjectID:   d.ProjectID,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   timeOrNow(d.CreatedAt),
		CompletedAt: timePtr(d.CompletedAt),
		RecordedBy:  d.RecordedBy,
	}, nil
}

func BudgetFrom(s docstore.Snapshot) (core.Budget, error) {
	var d BudgetDocument
	if err := decode(s, &d); err != nil {
		return core.Budget{}, err
	}
	items := make([]core.BudgetItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, core.BudgetItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitAmount:  it.UnitAmount,
			Total:       it.Total,
		})
	}
	return core.Budget{
		ID:         s.ID,
		Client:     d.Client,
		Title:      d.Title,
		Items:      items,
		Subtotal:   d.Subtotal,
		Discount:   d.Discount,
		Total:      d.Total,
		Status:     d.Status,
		Notes:      d.Notes,
		CreatedAt:  timeOrNow(d.CreatedAt),
		DueDate:    timeOrNow(d.DueDate),
		RecordedBy: d.RecordedBy,
	}, nil
}

func ReceiptFrom(s docstore.Snapshot) (core.Receipt, error) {
	var d ReceiptDocument
	if err := decode(s, &d); err != nil {
		return core.Receipt{}, err
	}
	return core.Receipt{
		ID:          s.ID,
		Client:      d.Client,
		Description: d.Description,
		BudgetID:    d.BudgetID,
		AmountPaid:  d.AmountPaid,
		Status:      d.Status,
		PaymentDate: timeOrNow(d.PaymentDate),
		DueDate:     timePtr(d.DueDate),
		CreatedAt:   timeOrNow(d.CreatedAt),
		RecordedBy:  d.RecordedBy,
	}, nil
}

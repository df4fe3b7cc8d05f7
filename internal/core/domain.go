package core

import (
	"time"
)

// Kind names one of the entity collections.
type Kind string

const (
	KindClient          Kind = "client"
	KindRevenue         Kind = "revenue"
	KindExpense         Kind = "expense"
	KindCredential      Kind = "credential"
	KindProject         Kind = "project"
	KindProjectActivity Kind = "project_activity"
	KindBudget          Kind = "budget"
	KindReceipt         Kind = "receipt"
)

// Collection returns the document store collection holding records of this kind.
func (k Kind) Collection() string {
	switch k {
	case KindClient:
		return "clients"
	case KindRevenue:
		return "revenues"
	case KindExpense:
		return "expenses"
	case KindCredential:
		return "credentials"
	case KindProject:
		return "projects"
	case KindProjectActivity:
		return "project_activities"
	case KindBudget:
		return "budgets"
	case KindReceipt:
		return "receipts"
	default:
		return ""
	}
}

type (
	ProjectStatus string
	BudgetStatus  string
	ReceiptStatus string
)

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectPaused     ProjectStatus = "paused"
	ProjectDelivered  ProjectStatus = "delivered"
	ProjectCancelled  ProjectStatus = "cancelled"
)

const (
	BudgetDraft    BudgetStatus = "draft"
	BudgetSent     BudgetStatus = "sent"
	BudgetApproved BudgetStatus = "approved"
	BudgetRejected BudgetStatus = "rejected"
	BudgetExpired  BudgetStatus = "expired"
)

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptPaid      ReceiptStatus = "paid"
	ReceiptOverdue   ReceiptStatus = "overdue"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectPaused, ProjectDelivered, ProjectCancelled:
		return true
	}
	return false
}

func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetDraft, BudgetSent, BudgetApproved, BudgetRejected, BudgetExpired:
		return true
	}
	return false
}

func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptPending, ReceiptPaid, ReceiptOverdue, ReceiptCancelled:
		return true
	}
	return false
}

// Identity is the acting user as reported by the identity provider.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// DefaultRecorder is stamped when the identity has neither a name nor an email.
const DefaultRecorder = "Usuário"

// Recorder returns the provenance label for records created by this identity.
func (id Identity) Recorder() string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	if id.Email != "" {
		return id.Email
	}
	return DefaultRecorder
}

// Records as returned by the gateway. Optional timestamps are nil when unset.
type (
	Client struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Service      string    `json:"service"`
		Email        string    `json:"email"`
		Phone        string    `json:"phone"`
		Notes        string    `json:"notes"`
		RegisteredAt time.Time `json:"registeredAt"`
		RecordedBy   string    `json:"recordedBy"`
	}

	Revenue struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
		RecordedBy  string    `json:"recordedBy"`
	}

	Expense struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
		RecordedBy  string    `json:"recordedBy"`
	}

	Credential struct {
		ID           string    `json:"id"`
		Site         string    `json:"site"`
		Username     string    `json:"username"`
		Password     string    `json:"password"`
		Notes        string    `json:"notes"`
		RegisteredAt time.Time `json:"registeredAt"`
		RecordedBy   string    `json:"recordedBy"`
	}

	Project struct {
		ID            string        `json:"id"`
		Name          string        `json:"name"`
		Client        string        `json:"client"`
		Description   string        `json:"description"`
		Amount        *float64      `json:"amount"`
		Status        ProjectStatus `json:"status"`
		StartDate     time.Time     `json:"startDate"`
		EstimatedDate *time.Time    `json:"estimatedDate"`
		DeliveryDate  *time.Time    `json:"deliveryDate"`
		RecordedBy    string        `json:"recordedBy"`
	}

	ProjectActivity struct {
		ID          string     `json:"id"`
		ProjectID   string     `json:"projectId"`
		Description string     `json:"description"`
		Completed   bool       `json:"completed"`
		CreatedAt   time.Time  `json:"createdAt"`
		CompletedAt *time.Time `json:"completedAt"`
		RecordedBy  string     `json:"recordedBy"`
	}

	BudgetItem struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		UnitAmount  float64 `json:"unitAmount"`
		Total       float64 `json:"total"`
	}

	Budget struct {
		ID         string       `json:"id"`
		Client     string       `json:"client"`
		Title      string       `json:"title"`
		Items      []BudgetItem `json:"items"`
		Subtotal   float64      `json:"subtotal"`
		Discount   float64      `json:"discount"`
		Total      float64      `json:"total"`
		Status     BudgetStatus `json:"status"`
		Notes      string       `json:"notes"`
		CreatedAt  time.Time    `json:"createdAt"`
		DueDate    time.Time    `json:"dueDate"`
		RecordedBy string       `json:"recordedBy"`
	}

	Receipt struct {
		ID          string        `json:"id"`
		Client      string        `json:"client"`
		Description string        `json:"description"`
		BudgetID    string        `json:"budgetId"`
		AmountPaid  float64       `json:"amountPaid"`
		Status      ReceiptStatus `json:"status"`
		PaymentDate time.Time     `json:"paymentDate"`
		DueDate     *time.Time    `json:"dueDate"`
		CreatedAt   time.Time     `json:"createdAt"`
		RecordedBy  string        `json:"recordedBy"`
	}
)

// Inputs accepted by the gateway. Amount fields take a float64, an integer,
// or text with a decimal comma ("150,50"). Time fields take a time.Time, a
// docstore.Timestamp, epoch milliseconds or a date string. A nil optional
// field means "no value".
type (
	ClientInput struct {
		Name         string `json:"name"`
		Service      string `json:"service"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Notes        string `json:"notes"`
		RegisteredAt any    `json:"registeredAt"`
	}

	RevenueInput struct {
		Description string `json:"description"`
		Amount      any    `json:"amount"`
		Category    string `json:"category"`
		Date        any    `json:"date"`
	}

	ExpenseInput struct {
		Description string `json:"description"`
		Amount      any    `json:"amount"`
		Category    string `json:"category"`
		Date        any    `json:"date"`
	}

	CredentialInput struct {
		Site         string `json:"site"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		Notes        string `json:"notes"`
		RegisteredAt any    `json:"registeredAt"`
	}

	ProjectInput struct {
		Name          string        `json:"name"`
		Client        string        `json:"client"`
		Description   string        `json:"description"`
		Amount        any           `json:"amount"`
		Status        ProjectStatus `json:"status"`
		StartDate     any           `json:"startDate"`
		EstimatedDate any           `json:"estimatedDate"`
		DeliveryDate  any           `json:"deliveryDate"`
	}

	ProjectActivityInput struct {
		ProjectID   string `json:"projectId"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
		CreatedAt   any    `json:"createdAt"`
		CompletedAt any    `json:"completedAt"`
	}

	BudgetItemInput struct {
		Description string `json:"description"`
		Quantity    any    `json:"quantity"`
		UnitAmount  any    `json:"unitAmount"`
		Total       any    `json:"total"`
	}

	BudgetInput struct {
		Client    string            `json:"client"`
		Title     string            `json:"title"`
		Items     []BudgetItemInput `json:"items"`
		Subtotal  any               `json:"subtotal"`
		Discount  any               `json:"discount"`
		Total     any               `json:"total"`
		Status    BudgetStatus      `json:"status"`
		Notes     string            `json:"notes"`
		CreatedAt any               `json:"createdAt"`
		DueDate   any               `json:"dueDate"`
	}

	ReceiptInput struct {
		Client      string        `json:"client"`
		Description string        `json:"description"`
		BudgetID    string        `json:"budgetId"`
		AmountPaid  any           `json:"amountPaid"`
		Status      ReceiptStatus `json:"status"`
		PaymentDate any           `json:"paymentDate"`
		DueDate     any           `json:"dueDate"`
		CreatedAt   any           `json:"createdAt"`
	}
)

// Partial updates. Nil fields are left untouched in the stored record.
type (
	BudgetPatch struct {
		Client   *string           `json:"client"`
		Title    *string           `json:"title"`
		Items    []BudgetItemInput `json:"items"`
		Subtotal any               `json:"subtotal"`
		Discount any               `json:"discount"`
		Total    any               `json:"total"`
		Status   *BudgetStatus     `json:"status"`
		Notes    *string           `json:"notes"`
		DueDate  any               `json:"dueDate"`
	}

	ReceiptPatch struct {
		Client      *string        `json:"client"`
		Description *string        `json:"description"`
		AmountPaid  any            `json:"amountPaid"`
		Status      *ReceiptStatus `json:"status"`
		PaymentDate any            `json:"paymentDate"`
		DueDate     any            `json:"dueDate"`
	}
)

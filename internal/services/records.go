package services

import (
	"context"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore"
	"agency/internal/normalize"
)

func byNewest(field string) docstore.Query {
	return docstore.Query{OrderBy: field, Direction: docstore.Desc}
}

func (g *Gateway) CreateClient(ctx context.Context, sess *auth.Session, in core.ClientInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.ClientDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindClient, doc, by)
}

func (g *Gateway) ListClients(ctx context.Context, sess *auth.Session) ([]core.Client, error) {
	return list(ctx, g, sess, core.KindClient, byNewest("registeredAt"), normalize.ClientFrom)
}

// CreateRevenue stores a revenue and announces it to the ledger mirror.
func (g *Gateway) CreateRevenue(ctx context.Context, sess *auth.Session, in core.RevenueInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.RevenueDoc(in, by)
	if err != nil {
		return "", err
	}
	id, err := g.add(ctx, core.KindRevenue, doc, by)
	if err != nil {
		return "", err
	}
	g.publishLedger(ctx, core.KindRevenue, id)
	return id, nil
}

func (g *Gateway) ListRevenues(ctx context.Context, sess *auth.Session) ([]core.Revenue, error) {
	return list(ctx, g, sess, core.KindRevenue, byNewest("date"), normalize.RevenueFrom)
}

// CreateExpense stores an expense and announces it to the ledger mirror.
func (g *Gateway) CreateExpense(ctx context.Context, sess *auth.Session, in core.ExpenseInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.ExpenseDoc(in, by)
	if err != nil {
		return "", err
	}
	id, err := g.add(ctx, core.KindExpense, doc, by)
	if err != nil {
		return "", err
	}
	g.publishLedger(ctx, core.KindExpense, id)
	return id, nil
}

func (g *Gateway) ListExpenses(ctx context.Context, sess *auth.Session) ([]core.Expense, error) {
	return list(ctx, g, sess, core.KindExpense, byNewest("date"), normalize.ExpenseFrom)
}

func (g *Gateway) CreateCredential(ctx context.Context, sess *auth.Session, in core.CredentialInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.CredentialDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindCredential, doc, by)
}

func (g *Gateway) ListCredentials(ctx context.Context, sess *auth.Session) ([]core.Credential, error) {
	return list(ctx, g, sess, core.KindCredential, byNewest("registeredAt"), normalize.CredentialFrom)
}

func (g *Gateway) CreateProject(ctx context.Context, sess *auth.Session, in core.ProjectInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.ProjectDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindProject, doc, by)
}

func (g *Gateway) ListProjects(ctx context.Context, sess *auth.Session) ([]core.Project, error) {
	return list(ctx, g, sess, core.KindProject, byNewest("startDate"), normalize.ProjectFrom)
}

func (g *Gateway) CreateProjectActivity(ctx context.Context, sess *auth.Session, in core.ProjectActivityInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.ProjectActivityDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindProjectActivity, doc, by)
}

// ListProjectActivities returns the activities of one project in creation order.
func (g *Gateway) ListProjectActivities(ctx context.Context, sess *auth.Session, projectID string) ([]core.ProjectActivity, error) {
	q := docstore.Query{
		OrderBy:   "createdAt",
		Direction: docstore.Asc,
		Where:     []docstore.Filter{{Field: "projectId", Value: projectID}},
	}
	return list(ctx, g, sess, core.KindProjectActivity, q, normalize.ProjectActivityFrom)
}

func (g *Gateway) CreateBudget(ctx context.Context, sess *auth.Session, in core.BudgetInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.BudgetDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindBudget, doc, by)
}

func (g *Gateway) ListBudgets(ctx context.Context, sess *auth.Session) ([]core.Budget, error) {
	return list(ctx, g, sess, core.KindBudget, byNewest("createdAt"), normalize.BudgetFrom)
}

func (g *Gateway) CreateReceipt(ctx context.Context, sess *auth.Session, in core.ReceiptInput) (string, error) {
	by, err := recorder(sess)
	if err != nil {
		return "", err
	}
	doc, err := normalize.ReceiptDoc(in, by)
	if err != nil {
		return "", err
	}
	return g.add(ctx, core.KindReceipt, doc, by)
}

func (g *Gateway) ListReceipts(ctx context.Context, sess *auth.Session) ([]core.Receipt, error) {
	return list(ctx, g, sess, core.KindReceipt, byNewest("createdAt"), normalize.ReceiptFrom)
}

package services

import (
	"context"
	"sort"
	"time"

	"agency/internal/auth"
	"agency/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRecentActivity = 5

	recentRevenues = 4
	recentExpenses = 4
	recentClients  = 3
)

// RecentActivity merges the newest revenues, expenses and clients into one
// feed, newest first, capped at limit entries (DefaultRecentActivity when limit <= 0).
func (g *Gateway) RecentActivity(ctx context.Context, sess *auth.Session, limit int) ([]core.Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentActivity
	}

	var (
		revenues []core.Revenue
		expenses []core.Expense
		clients  []core.Client
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		revenues, err = g.ListRevenues(egCtx, sess)
		return err
	})
	eg.Go(func() (err error) {
		expenses, err = g.ListExpenses(egCtx, sess)
		return err
	})
	eg.Go(func() (err error) {
		clients, err = g.ListClients(egCtx, sess)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	feed := make([]core.Activity, 0, recentRevenues+recentExpenses+recentClients)
	for _, r := range head(revenues, recentRevenues) {
		feed = append(feed, core.Activity{Kind: core.KindRevenue, Description: r.Description, Amount: r.Amount, Category: r.Category, Date: r.Date})
	}
	for _, e := range head(expenses, recentExpenses) {
		feed = append(feed, core.Activity{Kind: core.KindExpense, Description: e.Description, Amount: e.Amount, Category: e.Category, Date: e.Date})
	}
	for _, c := range head(clients, recentClients) {
		feed = append(feed, core.Activity{Kind: core.KindClient, Description: c.Name, Category: c.Service, Date: c.RegisteredAt})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date.After(feed[j].Date) })
	return head(feed, limit), nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// MonthOverview totals revenues and expenses dated within year/month (UTC).
func (g *Gateway) MonthOverview(ctx context.Context, sess *auth.Session, year, month int) (core.MonthOverview, error) {
	ov := core.MonthOverview{Year: year, Month: month}

	var (
		revenues []core.Revenue
		expenses []core.Expense
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		revenues, err = g.ListRevenues(egCtx, sess)
		return err
	})
	eg.Go(func() (err error) {
		expenses, err = g.ListExpenses(egCtx, sess)
		return err
	})
	if err := eg.Wait(); err != nil {
		return ov, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	inMonth := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	revTotal, revByCat := decimal.Zero, map[string]decimal.Decimal{}
	for _, r := range revenues {
		if inMonth(r.Date) {
			a := decimal.NewFromFloat(r.Amount)
			revTotal = revTotal.Add(a)
			revByCat[r.Category] = revByCat[r.Category].Add(a)
		}
	}
	expTotal, expByCat := decimal.Zero, map[string]decimal.Decimal{}
	for _, e := range expenses {
		if inMonth(e.Date) {
			a := decimal.NewFromFloat(e.Amount)
			expTotal = expTotal.Add(a)
			expByCat[e.Category] = expByCat[e.Category].Add(a)
		}
	}

	ov.Revenue = revTotal.InexactFloat64()
	ov.Expenses = expTotal.InexactFloat64()
	ov.Balance = revTotal.Sub(expTotal).InexactFloat64()
	ov.RevenueByCategory = byCategory(revByCat)
	ov.ExpenseByCategory = byCategory(expByCat)
	return ov, nil
}

// byCategory sorts by amount descending, then by name.
func byCategory(m map[string]decimal.Decimal) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(m))
	for name, amount := range m {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

package services

import (
	"context"
	"testing"
	"time"

	"agency/internal/auth"
	"agency/internal/core"
	"agency/internal/docstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboard(t *testing.T, g *Gateway, sess *auth.Session) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := g.CreateRevenue(ctx, sess, core.RevenueInput{Description: "rev", Amount: float64(100 * i), Category: "web", Date: day(i * 2)})
		require.NoError(t, err)
	}
	for _, e := range []struct {
		amount   any
		category string
		at       time.Time
	}{
		{"30,25", "hosting", day(3)},
		{"10", "tools", day(9)},
		{"5", "tools", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := g.CreateExpense(ctx, sess, core.ExpenseInput{Description: "exp", Amount: e.amount, Category: e.category, Date: e.at})
		require.NoError(t, err)
	}
	_, err := g.CreateClient(ctx, sess, core.ClientInput{Name: "Acme", Service: "site", RegisteredAt: day(11)})
	require.NoError(t, err)
}

func TestRecentActivity(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(memory.New())
	sess := auth.Resolved(ana)
	seedDashboard(t, g, sess)

	feed, err := g.RecentActivity(ctx, sess, 0)
	require.NoError(t, err)
	require.Len(t, feed, DefaultRecentActivity)

	assert.Equal(t, core.KindExpense, feed[0].Kind, "April expense is the newest")
	assert.Equal(t, core.KindClient, feed[1].Kind)
	assert.Equal(t, "Acme", feed[1].Description)
	assert.Equal(t, 500.0, feed[2].Amount)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Date.After(feed[i-1].Date), "feed is newest first")
	}

	all, err := g.RecentActivity(ctx, sess, 50)
	require.NoError(t, err)
	assert.Len(t, all, 4+3+1, "at most four revenues, four expenses and three clients")

	empty, err := g.RecentActivity(ctx, auth.Resolved(nil), 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMonthOverview(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(memory.New())
	sess := auth.Resolved(ana)
	seedDashboard(t, g, sess)

	ov, err := g.MonthOverview(ctx, sess, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 2025, ov.Year)
	assert.Equal(t, 3, ov.Month)
	assert.Equal(t, 1500.0, ov.Revenue)
	assert.Equal(t, 40.25, ov.Expenses)
	assert.Equal(t, 1459.75, ov.Balance)
	assert.Equal(t, []core.CategoryAmount{{Name: "web", Amount: 1500}}, ov.RevenueByCategory)
	assert.Equal(t, []core.CategoryAmount{{Name: "hosting", Amount: 30.25}, {Name: "tools", Amount: 10}}, ov.ExpenseByCategory)

	april, err := g.MonthOverview(ctx, sess, 2025, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, april.Revenue)
	assert.Equal(t, 5.0, april.Expenses)
	assert.Equal(t, -5.0, april.Balance)
}

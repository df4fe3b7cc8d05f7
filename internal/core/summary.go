package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MonthOverview is a compact revenue/expense summary for a specific year+month.
type MonthOverview struct {
	Year              int              `json:"year"`
	Month             int              `json:"month"` // 1-12
	Revenue           float64          `json:"revenue"`
	Expenses          float64          `json:"expenses"`
	Balance           float64          `json:"balance"`
	RevenueByCategory []CategoryAmount `json:"revenueByCategory"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Kind        Kind      `json:"kind"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

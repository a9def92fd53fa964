package service

import (
	"context"
	"testing"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseAddListDelete(t *testing.T) {
	svc := NewExpenseService(newTestDB(t))
	ctx := context.Background()

	expense, err := svc.Add(ctx, &model.ExpenseRequest{
		Type:        "Facebook Ads",
		Amount:      decimal.NewFromInt(2500),
		Description: "March campaign",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, expense.ID)
	assert.False(t, expense.Date.IsZero(), "date defaults to now")

	expenses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	require.NoError(t, svc.Delete(ctx, expense.ID))
	assert.ErrorIs(t, svc.Delete(ctx, expense.ID), ErrNotFound)
}

func TestFinanceSummary(t *testing.T) {
	svc := NewExpenseService(newTestDB(t))
	ctx := context.Background()

	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	entries := []model.ExpenseRequest{
		{Type: "Facebook Ads", Amount: decimal.NewFromInt(2500), Date: &march},
		{Type: "Facebook Ads", Amount: decimal.NewFromFloat(1200.50), Date: &april},
		{Type: "Packaging", Amount: decimal.NewFromInt(300), Date: &april},
	}
	for i := range entries {
		_, err := svc.Add(ctx, &entries[i])
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalEntries)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromFloat(4000.50)),
		"got %s", summary.TotalAmount)
	assert.True(t, summary.ByType["Facebook Ads"].Equal(decimal.NewFromFloat(3700.50)))
	assert.True(t, summary.ByType["Packaging"].Equal(decimal.NewFromInt(300)))

	// Date-bounded summary only sees April.
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	summary, err = svc.Summary(ctx, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEntries)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromFloat(1500.50)))
}

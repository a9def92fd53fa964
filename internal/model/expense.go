package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one append-only marketing or operating cost entry. Expenses
// have no relation to orders.
type Expense struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type        string          `json:"type" gorm:"index"` // e.g. "Facebook Ads", "Packaging"
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName sets the expense ledger table name.
func (Expense) TableName() string { return "expenses" }

// ExpenseRequest records a new expense entry.
type ExpenseRequest struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date"`
}

// FinanceSummary aggregates the expense ledger for the dashboard.
type FinanceSummary struct {
	TotalEntries int                        `json:"total_entries"`
	TotalAmount  decimal.Decimal            `json:"total_amount"`
	ByType       map[string]decimal.Decimal `json:"by_type"`
}

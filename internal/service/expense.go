package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseService is the append-only cost ledger.
type ExpenseService interface {
	Add(ctx context.Context, req *model.ExpenseRequest) (*model.Expense, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Expense, error)
	Summary(ctx context.Context, from, to *time.Time) (*model.FinanceSummary, error)
}

// expenseServiceImpl is the gorm-backed expense service.
type expenseServiceImpl struct {
	db *gorm.DB
}

// NewExpenseService creates a new expense service.
func NewExpenseService(db *gorm.DB) ExpenseService {
	return &expenseServiceImpl{db: db}
}

// Add records a new expense entry.
func (s *expenseServiceImpl) Add(ctx context.Context, req *model.ExpenseRequest) (*model.Expense, error) {
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	expense := &model.Expense{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// Delete removes an expense entry.
func (s *expenseServiceImpl) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Expense{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all expenses, newest entry first.
func (s *expenseServiceImpl) List(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// Summary totals the ledger, optionally limited to a date range. Sums are
// computed with decimal arithmetic in-process; the ledger stays small at
// retail scale.
func (s *expenseServiceImpl) Summary(ctx context.Context, from, to *time.Time) (*model.FinanceSummary, error) {
	query := s.db.WithContext(ctx).Model(&model.Expense{})
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	var expenses []model.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	summary := &model.FinanceSummary{
		TotalEntries: len(expenses),
		TotalAmount:  decimal.Zero,
		ByType:       make(map[string]decimal.Decimal),
	}
	for _, e := range expenses {
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)
		summary.ByType[e.Type] = summary.ByType[e.Type].Add(e.Amount)
	}
	return summary, nil
}

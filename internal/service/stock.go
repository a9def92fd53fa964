package service

import (
	"context"
	"fmt"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"gorm.io/gorm"
)

// StockService exposes the single global inventory counter.
type StockService interface {
	Current(ctx context.Context) (int, error)
	Adjust(ctx context.Context, delta int) error
}

// stockServiceImpl is the gorm-backed stock service.
type stockServiceImpl struct {
	db *gorm.DB
}

// NewStockService creates a new stock service.
func NewStockService(db *gorm.DB) StockService {
	return &stockServiceImpl{db: db}
}

// Current returns the present stock quantity.
func (s *stockServiceImpl) Current(ctx context.Context) (int, error) {
	var stock model.StockLevel
	if err := s.db.WithContext(ctx).First(&stock, model.StockLevelID).Error; err != nil {
		return 0, fmt.Errorf("failed to read stock level: %w", err)
	}
	return stock.Quantity, nil
}

// Adjust applies a relative stock change.
func (s *stockServiceImpl) Adjust(ctx context.Context, delta int) error {
	return adjustStock(s.db.WithContext(ctx), delta)
}

// adjustStock moves the counter with a single relative UPDATE so concurrent
// adjustments cannot lose each other's writes. Callers reconciling stock
// together with an order mutation pass their transaction handle.
func adjustStock(tx *gorm.DB, delta int) error {
	res := tx.Model(&model.StockLevel{}).
		Where("id = ?", model.StockLevelID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock level row missing")
	}
	return nil
}

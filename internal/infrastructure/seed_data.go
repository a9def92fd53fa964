package infrastructure

import (
	"errors"
	"fmt"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"gorm.io/gorm"
)

// DefaultsManager handles first-startup defaults and one-time data repairs
type DefaultsManager struct {
	db *gorm.DB
}

// NewDefaultsManager creates a new defaults manager
func NewDefaultsManager(db *gorm.DB) *DefaultsManager {
	return &DefaultsManager{db: db}
}

// EnsureAll initializes the stock row and the order-id counter when absent
// and canonicalizes legacy status spellings left by old dashboard builds.
func (m *DefaultsManager) EnsureAll() error {
	if err := m.ensureStockLevel(); err != nil {
		return fmt.Errorf("failed to ensure stock level: %w", err)
	}
	if err := m.ensureOrderIDCounter(); err != nil {
		return fmt.Errorf("failed to ensure order id counter: %w", err)
	}
	if err := m.canonicalizeLegacyStatuses(); err != nil {
		return fmt.Errorf("failed to canonicalize legacy statuses: %w", err)
	}
	return nil
}

// ensureStockLevel seeds the single stock row with the default quantity.
func (m *DefaultsManager) ensureStockLevel() error {
	var stock model.StockLevel
	err := m.db.First(&stock, model.StockLevelID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return m.db.Create(&model.StockLevel{
		ID:       model.StockLevelID,
		Quantity: model.DefaultStockQuantity,
	}).Error
}

// ensureOrderIDCounter seeds the order-id counter. The counter starts at the
// historical base so reserved ids continue the 501, 502, … sequence the
// storefront has always shown.
func (m *DefaultsManager) ensureOrderIDCounter() error {
	var counter model.Counter
	err := m.db.Where("name = ?", model.CounterOrderID).First(&counter).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Existing deployments already hold orders, so continue from the highest
	// assigned id rather than the base.
	var orderCount int64
	if err := m.db.Model(&model.Order{}).Count(&orderCount).Error; err != nil {
		return err
	}
	return m.db.Create(&model.Counter{
		Name:  model.CounterOrderID,
		Value: model.OrderIDBase + int(orderCount),
	}).Error
}

// canonicalizeLegacyStatuses rewrites the misspelled terminal statuses
// ("Return", "Cancel") written by old builds to their canonical forms. Runs
// on every startup but only touches rows still carrying the old spellings.
func (m *DefaultsManager) canonicalizeLegacyStatuses() error {
	legacy := map[model.Status]model.Status{
		model.LegacyStatusReturn: model.StatusReturned,
		model.LegacyStatusCancel: model.StatusCancelled,
	}
	for old, canonical := range legacy {
		if err := m.db.Model(&model.Order{}).
			Where("status = ?", old).
			Update("status", canonical).Error; err != nil {
			return err
		}
	}
	return nil
}

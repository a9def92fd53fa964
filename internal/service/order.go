package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService is the order ledger: intake, lifecycle transitions with
// inventory reconciliation, field updates, restock and demotion.
type OrderService interface {
	PlaceOrder(ctx context.Context, req *model.OrderRequest, clientIP string) (*model.Order, error)
	PlaceManualOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, target model.Status) (*model.Order, error)
	UpdateCallStatus(ctx context.Context, id, callStatus string) (*model.Order, error)
	UpdateShippingMethod(ctx context.Context, id string, req *model.ShippingMethodRequest) (*model.Order, error)
	UpdatePrice(ctx context.Context, id string, req *model.PriceRequest) (*model.Order, error)
	UpdateNote(ctx context.Context, id, note string) (*model.Order, error)
	RestockReturn(ctx context.Context, id string) (*model.Order, error)
	MoveToAbandoned(ctx context.Context, id string) (*model.AbandonedCart, error)
	AnalyzeLocation(ctx context.Context, id string) (*model.Order, error)
}

// OrderServiceConfig carries the lifecycle feature flags.
type OrderServiceConfig struct {
	// PermissiveStatusFlow disables the transition table and allows any
	// status to overwrite any other, as the old dashboard did. The
	// inventory and timestamp rules still apply.
	PermissiveStatusFlow bool

	// AllowUnlinkedRestock permits a manual restock on an order that never
	// deducted inventory.
	AllowUnlinkedRestock bool
}

// orderServiceImpl is the gorm-backed order service.
type orderServiceImpl struct {
	db         *gorm.DB
	carts      CartService
	blocklist  BlocklistService
	classifier AddressClassifier
	cfg        OrderServiceConfig
	logger     *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(db *gorm.DB, carts CartService, blocklist BlocklistService, classifier AddressClassifier, cfg OrderServiceConfig, logger *slog.Logger) OrderService {
	return &orderServiceImpl{
		db:         db,
		carts:      carts,
		blocklist:  blocklist,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// PlaceOrder runs the full intake gate: blocklist, duplicate-active check,
// history snapshot, id assignment, persist, then the best-effort cleanup
// and enrichment steps.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, req *model.OrderRequest, clientIP string) (*model.Order, error) {
	blocked, err := s.blocklist.AnyBlocked(ctx, []string{req.DeviceID, req.Phone, clientIP})
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	order, err := s.createOrder(ctx, req, clientIP, model.SourceWebsite, true)
	if err != nil {
		return nil, err
	}

	s.afterPlacement(ctx, order)
	return order, nil
}

// PlaceManualOrder records an operator-entered order. The customer-facing
// gates (blocklist, duplicate suppression) do not apply; assignment and
// defaulting are identical.
func (s *orderServiceImpl) PlaceManualOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	order, err := s.createOrder(ctx, req, "", model.SourceManual, false)
	if err != nil {
		return nil, err
	}
	s.afterPlacement(ctx, order)
	return order, nil
}

// createOrder persists a new ledger row. The duplicate gate, the history
// snapshot, the id reservation and the insert happen in one transaction; a
// rejection persists nothing.
func (s *orderServiceImpl) createOrder(ctx context.Context, req *model.OrderRequest, clientIP, source string, guardDuplicates bool) (*model.Order, error) {
	callStatus := req.CallStatus
	if callStatus == "" {
		callStatus = model.CallStatusPending
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		DeviceID:        req.DeviceID,
		ClientIP:        clientIP,
		Items:           req.Items,
		UnitPrice:       req.UnitPrice,
		TotalValue:      req.TotalValue,
		ShippingMethod:  req.ShippingMethod,
		ShippingCost:    req.ShippingCost,
		Note:            req.Note,
		Status:          model.StatusProcessing,
		Source:          source,
		PhoneCallStatus: callStatus,
		CreatedAt:       time.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guardDuplicates {
			var active int64
			if err := tx.Model(&model.Order{}).
				Where("phone = ? AND status NOT IN ?", req.Phone, model.TerminalStatuses()).
				Count(&active).Error; err != nil {
				return fmt.Errorf("failed to check active orders: %w", err)
			}
			if active > 0 {
				return ErrActiveOrderExists
			}
		}

		var history int64
		if err := tx.Model(&model.Order{}).
			Where("phone = ?", req.Phone).
			Count(&history).Error; err != nil {
			return fmt.Errorf("failed to count order history: %w", err)
		}
		order.CustomerStats = customerStats(history)

		orderID, err := nextOrderID(tx)
		if err != nil {
			return err
		}
		order.OrderID = orderID

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// afterPlacement runs the non-fatal post-insert steps: draft cleanup and
// address enrichment. Neither failure reaches the caller.
func (s *orderServiceImpl) afterPlacement(ctx context.Context, order *model.Order) {
	if removed, err := s.carts.CleanupForOrder(ctx, order.Phone, order.DeviceID); err != nil {
		s.logger.Warn("draft cleanup failed after order placement",
			"order_id", order.OrderID, "error", err)
	} else if removed > 0 {
		s.logger.Info("cleaned up checkout drafts", "order_id", order.OrderID, "drafts", removed)
	}

	if order.Address != "" && s.classifier != nil {
		s.enrichLocation(ctx, order)
	}
}

// enrichLocation attaches the classifier's district/thana pair to the
// order, falling back to the manual-check sentinel when the call fails.
func (s *orderServiceImpl) enrichLocation(ctx context.Context, order *model.Order) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	loc, err := s.classifier.Classify(cctx, order.Address)
	if err != nil {
		s.logger.Warn("address classification failed", "order_id", order.OrderID, "error", err)
		loc = UnknownLocation()
	}

	if err := s.db.WithContext(cctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{"district": loc.District, "thana": loc.Thana}).Error; err != nil {
		s.logger.Warn("failed to store classified location", "order_id", order.OrderID, "error", err)
		return
	}
	order.District = loc.District
	order.Thana = loc.Thana
}

// customerStats builds the creation-time history snapshot.
func customerStats(previousOrders int64) model.CustomerStats {
	customerType := "New"
	if previousOrders > 0 {
		customerType = "Returning"
	}
	return model.CustomerStats{
		IsReturningCustomer:   previousOrders > 0,
		TotalOrdersBeforeThis: previousOrders,
		CustomerType:          customerType,
	}
}

// nextOrderID reserves the next numeric order id. The relative UPDATE locks
// the counter row for the rest of the transaction, so two concurrent
// placements can never read the same value.
func nextOrderID(tx *gorm.DB) (int, error) {
	res := tx.Model(&model.Counter{}).
		Where("name = ?", model.CounterOrderID).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reserve order id: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("order id counter missing")
	}

	var counter model.Counter
	if err := tx.Where("name = ?", model.CounterOrderID).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("failed to read order id counter: %w", err)
	}
	return counter.Value, nil
}

// ListOrders returns the whole ledger, newest first.
func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder loads one order by its record id.
func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return loadOrder(s.db.WithContext(ctx), id)
}

// loadOrder fetches an order within the given handle, translating the
// missing-row case.
func loadOrder(tx *gorm.DB, id string) (*model.Order, error) {
	var order model.Order
	if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// UpdateStatus moves an order through its lifecycle. Entering Shipped or
// Delivered deducts stock exactly once per order; re-applying the current
// status is a no-op. Abandoned is never reachable here; demotion owns it.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id string, target model.Status) (*model.Order, error) {
	if target == model.StatusAbandoned {
		return nil, ErrIllegalTransition
	}

	var updated *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}

		if order.Status == target {
			updated = order
			return nil
		}
		if !s.cfg.PermissiveStatusFlow && !model.TransitionAllowed(order.Status, target) {
			return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, order.Status, target)
		}

		order.Status = target
		order.StampStatusTime(target, time.Now())

		if target.DeductsInventory() && !order.InventoryDeducted {
			// The conditional UPDATE is the deduct-once guard: only the
			// caller that flips the flag also moves stock.
			res := tx.Model(&model.Order{}).
				Where("id = ? AND inventory_deducted = ?", id, false).
				UpdateColumn("inventory_deducted", true)
			if res.Error != nil {
				return fmt.Errorf("failed to mark inventory deducted: %w", res.Error)
			}
			if res.RowsAffected == 1 {
				if err := adjustStock(tx, -model.ResolveQuantity(order.Items)); err != nil {
					return err
				}
			}
			// Either this caller flipped the flag or a concurrent transition
			// already had; the Save below must not write false back.
			order.InventoryDeducted = true
		}

		if err := tx.Save(order).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateCallStatus records the outcome of the confirmation call.
func (s *orderServiceImpl) UpdateCallStatus(ctx context.Context, id, callStatus string) (*model.Order, error) {
	if callStatus == "" {
		return nil, fmt.Errorf("%w: phone_call_status is required", ErrInvalidInput)
	}
	return s.updateFields(ctx, id, map[string]any{"phone_call_status": callStatus})
}

// UpdateShippingMethod changes the shipping method and, when given, its cost.
func (s *orderServiceImpl) UpdateShippingMethod(ctx context.Context, id string, req *model.ShippingMethodRequest) (*model.Order, error) {
	fields := map[string]any{"shipping_method": req.ShippingMethod}
	if req.ShippingCost != nil {
		fields["shipping_cost"] = *req.ShippingCost
	}
	return s.updateFields(ctx, id, fields)
}

// UpdatePrice changes the pricing fields; at least one must be present.
func (s *orderServiceImpl) UpdatePrice(ctx context.Context, id string, req *model.PriceRequest) (*model.Order, error) {
	fields := map[string]any{}
	if req.UnitPrice != nil {
		fields["unit_price"] = *req.UnitPrice
	}
	if req.TotalValue != nil {
		fields["total_value"] = *req.TotalValue
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no price field given", ErrInvalidInput)
	}
	return s.updateFields(ctx, id, fields)
}

// UpdateNote replaces the operator note.
func (s *orderServiceImpl) UpdateNote(ctx context.Context, id, note string) (*model.Order, error) {
	return s.updateFields(ctx, id, map[string]any{"note": note})
}

// updateFields applies a plain column update and returns the fresh row.
func (s *orderServiceImpl) updateFields(ctx context.Context, id string, fields map[string]any) (*model.Order, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return loadOrder(s.db.WithContext(ctx), id)
}

// RestockReturn puts an order's units back into stock after a physical
// return. An order restocks at most once, and unless the unlinked-restock
// flag is set it must actually have deducted inventory first.
func (s *orderServiceImpl) RestockReturn(ctx context.Context, id string) (*model.Order, error) {
	var updated *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}
		if order.IsRestocked {
			return fmt.Errorf("%w: already restocked", ErrRestockNotAllowed)
		}
		if !order.InventoryDeducted && !s.cfg.AllowUnlinkedRestock {
			return fmt.Errorf("%w: inventory was never deducted", ErrRestockNotAllowed)
		}

		// The conditional UPDATE is the restock-once guard, like the
		// inventory_deducted flip: only the caller that flips the flag
		// also moves stock.
		res := tx.Model(&model.Order{}).
			Where("id = ? AND is_restocked = ?", id, false).
			UpdateColumn("is_restocked", true)
		if res.Error != nil {
			return fmt.Errorf("failed to mark order restocked: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: already restocked", ErrRestockNotAllowed)
		}

		if err := adjustStock(tx, model.ResolveQuantity(order.Items)); err != nil {
			return err
		}

		order.IsRestocked = true
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MoveToAbandoned demotes a ledger order into the draft store: any deducted
// stock is returned, the order is copied in with status Abandoned and a
// fresh identity, and the ledger row is deleted, all in one transaction.
func (s *orderServiceImpl) MoveToAbandoned(ctx context.Context, id string) (*model.AbandonedCart, error) {
	var draft *model.AbandonedCart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, id)
		if err != nil {
			return err
		}

		// Units come back only if they are still out: a manual restock
		// already returned them, so demoting afterwards must not inflate
		// stock a second time.
		if order.InventoryDeducted && !order.IsRestocked {
			if err := adjustStock(tx, model.ResolveQuantity(order.Items)); err != nil {
				return err
			}
		}

		draft = draftFromOrder(order)

		// A live draft from the same device would collide with the unique
		// device index; the demoted snapshot supersedes it.
		if err := tx.Where("device_id = ?", draft.DeviceID).
			Delete(&model.AbandonedCart{}).Error; err != nil {
			return fmt.Errorf("failed to clear existing draft: %w", err)
		}
		if err := tx.Create(draft).Error; err != nil {
			return fmt.Errorf("failed to store demoted order: %w", err)
		}
		res := tx.Where("id = ?", order.ID).Delete(&model.Order{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete ledger order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent demotion already took the row; roll back so the
			// restock and draft insert are not applied twice.
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// AnalyzeLocation re-runs the address classifier on demand.
func (s *orderServiceImpl) AnalyzeLocation(ctx context.Context, id string) (*model.Order, error) {
	order, err := loadOrder(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if order.Address == "" {
		return nil, fmt.Errorf("%w: order has no address", ErrInvalidInput)
	}
	s.enrichLocation(ctx, order)
	return order, nil
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func orderRequest(phone string) *model.OrderRequest {
	return &model.OrderRequest{
		Name:       "Asha Rahman",
		Phone:      phone,
		Address:    "House 12, Road 5, Dhanmondi, Dhaka",
		Items:      datatypes.JSON(`[{"quantity":3}]`),
		TotalValue: decimal.NewFromInt(1500),
	}
}

func TestPlaceOrderAssignsIDsAndDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	first, err := svc.PlaceOrder(ctx, orderRequest("01711111111"), "10.0.0.1")
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, orderRequest("01722222222"), "10.0.0.2")
	require.NoError(t, err)

	assert.Equal(t, 501, first.OrderID)
	assert.Equal(t, 502, second.OrderID)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, model.StatusProcessing, first.Status)
	assert.Equal(t, model.CallStatusPending, first.PhoneCallStatus)
	assert.Equal(t, model.SourceWebsite, first.Source)
	assert.False(t, first.InventoryDeducted)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "10.0.0.1", first.ClientIP)

	assert.False(t, first.CustomerStats.IsReturningCustomer)
	assert.Equal(t, int64(0), first.CustomerStats.TotalOrdersBeforeThis)
	assert.Equal(t, "New", first.CustomerStats.CustomerType)
}

func TestPlaceOrderDuplicateActiveRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()
	phone := "01733333333"

	first, err := svc.PlaceOrder(ctx, orderRequest(phone), "")
	require.NoError(t, err)

	_, err = svc.PlaceOrder(ctx, orderRequest(phone), "")
	require.ErrorIs(t, err, ErrActiveOrderExists)

	// The rejection must not leave a partial row behind.
	var count int64
	require.NoError(t, db.Model(&model.Order{}).Where("phone = ?", phone).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Once the first order reaches a terminal status the phone is free again.
	_, err = svc.UpdateStatus(ctx, first.ID, model.StatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, model.StatusDelivered)
	require.NoError(t, err)

	third, err := svc.PlaceOrder(ctx, orderRequest(phone), "")
	require.NoError(t, err)
	assert.True(t, third.CustomerStats.IsReturningCustomer)
	assert.Equal(t, int64(1), third.CustomerStats.TotalOrdersBeforeThis)
	assert.Equal(t, "Returning", third.CustomerStats.CustomerType)
}

func TestPlaceOrderBlocklisted(t *testing.T) {
	db := newTestDB(t)
	blocklist := NewBlocklistService(db)
	svc := NewOrderService(db, NewCartService(db), blocklist, nil, OrderServiceConfig{}, testLogger())
	ctx := context.Background()

	for _, identifier := range []string{"01744444444", "device-77", "203.0.113.9"} {
		_, err := blocklist.Block(ctx, &model.BlockRequest{Identifier: identifier})
		require.NoError(t, err)
	}

	byPhone := orderRequest("01744444444")
	_, err := svc.PlaceOrder(ctx, byPhone, "")
	assert.ErrorIs(t, err, ErrBlocked)

	byDevice := orderRequest("01755555555")
	byDevice.DeviceID = "device-77"
	_, err = svc.PlaceOrder(ctx, byDevice, "")
	assert.ErrorIs(t, err, ErrBlocked)

	byIP := orderRequest("01766666666")
	_, err = svc.PlaceOrder(ctx, byIP, "203.0.113.9")
	assert.ErrorIs(t, err, ErrBlocked)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "rejected orders must not persist")
}

func TestLifecycleStockReconciliation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	require.Equal(t, 1000, currentStock(t, db))

	order, err := svc.PlaceOrder(ctx, orderRequest("01777777777"), "")
	require.NoError(t, err)

	shipped, err := svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, 997, currentStock(t, db))
	assert.True(t, shipped.InventoryDeducted)
	require.NotNil(t, shipped.ShippedAt)
	shippedAt := *shipped.ShippedAt

	// Shipped to Delivered must not deduct again.
	delivered, err := svc.UpdateStatus(ctx, order.ID, model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, 997, currentStock(t, db))
	assert.True(t, delivered.InventoryDeducted)
	require.NotNil(t, delivered.DeliveredAt)
	require.NotNil(t, delivered.ShippedAt)
	assert.True(t, shippedAt.Equal(*delivered.ShippedAt), "shipped timestamp must not move")

	// Demotion returns the deducted units and moves the record.
	draft, err := svc.MoveToAbandoned(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, currentStock(t, db))
	assert.Equal(t, model.StatusAbandoned, draft.Status)
	assert.True(t, draft.MovedFromActive)
	assert.NotEqual(t, order.ID, draft.ID)

	_, err = svc.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusStrictRejectsIllegalMoves(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01788888888"), "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusReturned)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusAbandoned)
	assert.ErrorIs(t, err, ErrIllegalTransition, "Abandoned is reserved for demotion")

	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusDelivered)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusProcessing)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = svc.UpdateStatus(ctx, "no-such-order", model.StatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusPermissiveMode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{PermissiveStatusFlow: true}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01799999999"), "")
	require.NoError(t, err)

	shipped, err := svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedAt)
	shippedAt := *shipped.ShippedAt
	assert.Equal(t, 997, currentStock(t, db))

	// Any-to-any moves are allowed, but stock never deducts twice and the
	// first shipped timestamp stays.
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusProcessing)
	require.NoError(t, err)
	reshipped, err := svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, 997, currentStock(t, db))
	require.NotNil(t, reshipped.ShippedAt)
	assert.True(t, shippedAt.Equal(*reshipped.ShippedAt), "shipped timestamp must not move")

	// Demotion is still not a plain status update.
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusAbandoned)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01811111111"), "")
	require.NoError(t, err)

	again, err := svc.UpdateStatus(ctx, order.ID, model.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, again.Status)
	assert.Equal(t, 1000, currentStock(t, db))
}

func TestRestockReturn(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01822222222"), "")
	require.NoError(t, err)

	// Nothing was deducted yet, so a restock is refused by default.
	_, err = svc.RestockReturn(ctx, order.ID)
	assert.ErrorIs(t, err, ErrRestockNotAllowed)

	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusReturned)
	require.NoError(t, err)
	require.Equal(t, 997, currentStock(t, db))

	restocked, err := svc.RestockReturn(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, restocked.IsRestocked)
	assert.Equal(t, 1000, currentStock(t, db))

	// Never twice.
	_, err = svc.RestockReturn(ctx, order.ID)
	assert.ErrorIs(t, err, ErrRestockNotAllowed)
	assert.Equal(t, 1000, currentStock(t, db))
}

func TestRestockReturnUnlinkedFlag(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{AllowUnlinkedRestock: true}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01833333333"), "")
	require.NoError(t, err)

	restocked, err := svc.RestockReturn(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, restocked.IsRestocked)
	assert.Equal(t, 1003, currentStock(t, db))

	_, err = svc.RestockReturn(ctx, order.ID)
	assert.ErrorIs(t, err, ErrRestockNotAllowed, "even unlinked restocks happen at most once")
}

func TestPlaceManualOrderBypassesGates(t *testing.T) {
	db := newTestDB(t)
	blocklist := NewBlocklistService(db)
	svc := NewOrderService(db, NewCartService(db), blocklist, nil, OrderServiceConfig{}, testLogger())
	ctx := context.Background()
	phone := "01844444444"

	_, err := blocklist.Block(ctx, &model.BlockRequest{Identifier: phone})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, orderRequest(phone), "")
	require.ErrorIs(t, err, ErrBlocked)

	manual, err := svc.PlaceManualOrder(ctx, orderRequest(phone))
	require.NoError(t, err)
	assert.Equal(t, model.SourceManual, manual.Source)
	assert.Equal(t, 501, manual.OrderID)

	// Duplicate suppression does not apply to operator entries either.
	second, err := svc.PlaceManualOrder(ctx, orderRequest(phone))
	require.NoError(t, err)
	assert.Equal(t, 502, second.OrderID)
}

func TestPlaceOrderCleansUpDrafts(t *testing.T) {
	db := newTestDB(t)
	carts := NewCartService(db)
	svc := NewOrderService(db, carts, NewBlocklistService(db), nil, OrderServiceConfig{}, testLogger())
	ctx := context.Background()
	phone := "01855555555"

	// One draft matched by device, one by the phone column, one by the
	// legacy payload location.
	_, err := carts.SavePartial(ctx, &model.PartialOrderRequest{DeviceID: "device-1"})
	require.NoError(t, err)
	_, err = carts.SavePartial(ctx, &model.PartialOrderRequest{DeviceID: "device-2", Phone: phone})
	require.NoError(t, err)
	_, err = carts.SavePartial(ctx, &model.PartialOrderRequest{
		DeviceID: "device-3",
		Payload:  datatypes.JSON(fmt.Sprintf(`{"number":%q}`, phone)),
	})
	require.NoError(t, err)
	_, err = carts.SavePartial(ctx, &model.PartialOrderRequest{DeviceID: "unrelated"})
	require.NoError(t, err)

	req := orderRequest(phone)
	req.DeviceID = "device-1"
	_, err = svc.PlaceOrder(ctx, req, "")
	require.NoError(t, err)

	drafts, err := carts.List(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "unrelated", drafts[0].DeviceID)
}

func TestMoveToAbandonedWithoutDeduction(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01866666666"), "")
	require.NoError(t, err)

	draft, err := svc.MoveToAbandoned(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, currentStock(t, db), "no deduction happened, so nothing comes back")
	assert.Equal(t, order.Phone, draft.Phone)
	assert.NotEmpty(t, draft.Payload)

	_, err = svc.MoveToAbandoned(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveToAbandonedAfterManualRestock(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01877777777"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusReturned)
	require.NoError(t, err)

	_, err = svc.RestockReturn(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 1000, currentStock(t, db))

	// The units already came back through the manual restock, so demoting
	// the order must not return them a second time.
	draft, err := svc.MoveToAbandoned(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, currentStock(t, db))
	assert.Equal(t, model.StatusAbandoned, draft.Status)

	_, err = svc.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusKeepsDeductionFlagWhenBeaten(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01888888888"), "")
	require.NoError(t, err)

	// Flip the deduct-once flag out from under the transition just before
	// its conditional UPDATE runs, the way a concurrent transition that
	// committed first would have.
	flipped := false
	err = db.Callback().Update().Before("gorm:update").Register("flip_deduction_first", func(tx *gorm.DB) {
		if flipped {
			return
		}
		dest, ok := tx.Statement.Dest.(map[string]interface{})
		if !ok {
			return
		}
		if _, found := dest["inventory_deducted"]; !found {
			return
		}
		flipped = true
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"UPDATE all_orders SET inventory_deducted = 1 WHERE id = ?", order.ID)
		require.NoError(t, execErr)
	})
	require.NoError(t, err)

	shipped, err := svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	require.True(t, flipped)
	assert.True(t, shipped.InventoryDeducted)
	assert.Equal(t, 1000, currentStock(t, db), "the beaten caller must not deduct")

	// The flag must survive the full-row save, so a later deducting
	// transition cannot move stock either.
	fresh, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, fresh.InventoryDeducted)

	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, 1000, currentStock(t, db))
}

func TestRestockReturnWhenBeatenAdjustsNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01899999999"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusReturned)
	require.NoError(t, err)
	require.Equal(t, 997, currentStock(t, db))

	// Mark the order restocked just before the conditional UPDATE runs,
	// like a concurrent restock that got there first.
	flipped := false
	err = db.Callback().Update().Before("gorm:update").Register("flip_restock_first", func(tx *gorm.DB) {
		if flipped {
			return
		}
		dest, ok := tx.Statement.Dest.(map[string]interface{})
		if !ok {
			return
		}
		if _, found := dest["is_restocked"]; !found {
			return
		}
		flipped = true
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"UPDATE all_orders SET is_restocked = 1 WHERE id = ?", order.ID)
		require.NoError(t, execErr)
	})
	require.NoError(t, err)

	_, err = svc.RestockReturn(ctx, order.ID)
	require.ErrorIs(t, err, ErrRestockNotAllowed)
	require.True(t, flipped)

	// The beaten transaction rolled back entirely, including the simulated
	// winner's flag, so a real restock still works exactly once.
	assert.Equal(t, 997, currentStock(t, db))
	restocked, err := svc.RestockReturn(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, restocked.IsRestocked)
	assert.Equal(t, 1000, currentStock(t, db))
}

func TestMoveToAbandonedWhenBeatenRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, orderRequest("01810101010"), "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, model.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, 997, currentStock(t, db))

	// Remove the ledger row just before the demotion's delete runs, like a
	// concurrent demotion that committed first.
	deleted := false
	err = db.Callback().Delete().Before("gorm:delete").Register("delete_order_first", func(tx *gorm.DB) {
		if deleted || tx.Statement.Table != "all_orders" {
			return
		}
		deleted = true
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"DELETE FROM all_orders WHERE id = ?", order.ID)
		require.NoError(t, execErr)
	})
	require.NoError(t, err)

	_, err = svc.MoveToAbandoned(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, deleted)

	// The whole transaction rolled back: no restock, no draft, and the
	// simulated winner's delete is undone with it.
	assert.Equal(t, 997, currentStock(t, db))
	_, err = svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	var drafts int64
	require.NoError(t, db.Model(&model.AbandonedCart{}).Count(&drafts).Error)
	assert.Equal(t, int64(0), drafts)
}

func TestConcurrentPlacementsGetUniqueIDs(t *testing.T) {
	db := newTestDB(t)
	svc := newTestOrderService(t, db, OrderServiceConfig{}, nil)
	ctx := context.Background()

	const workers = 10
	ids := make([]int, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.PlaceOrder(ctx, orderRequest(fmt.Sprintf("019%08d", i)), "")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = order.OrderID
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, workers)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "order id %d assigned twice", ids[i])
		seen[ids[i]] = true
	}
	assert.Equal(t, 1000, currentStock(t, db))
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CartService manages abandoned checkout drafts.
type CartService interface {
	SavePartial(ctx context.Context, req *model.PartialOrderRequest) (*model.AbandonedCart, error)
	List(ctx context.Context) ([]model.AbandonedCart, error)
	Delete(ctx context.Context, id string) error
	CleanupForOrder(ctx context.Context, phone, deviceID string) (int64, error)
}

// cartServiceImpl is the gorm-backed cart service.
type cartServiceImpl struct {
	db *gorm.DB
}

// NewCartService creates a new cart service.
func NewCartService(db *gorm.DB) CartService {
	return &cartServiceImpl{db: db}
}

// SavePartial upserts the draft for a device. The same device id always
// overwrites in place; only LastUpdated tracks recency.
func (s *cartServiceImpl) SavePartial(ctx context.Context, req *model.PartialOrderRequest) (*model.AbandonedCart, error) {
	if req.DeviceID == "" {
		return nil, fmt.Errorf("%w: device_id is required", ErrInvalidInput)
	}

	var draft model.AbandonedCart
	err := s.db.WithContext(ctx).Where("device_id = ?", req.DeviceID).First(&draft).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up draft: %w", err)
	}

	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if isNew {
		draft = model.AbandonedCart{
			ID:       uuid.NewString(),
			DeviceID: req.DeviceID,
		}
	}

	draft.Name = req.Name
	draft.Phone = req.Phone
	draft.Address = req.Address
	draft.Payload = req.Payload
	draft.LastUpdated = time.Now()

	if isNew {
		err = s.db.WithContext(ctx).Create(&draft).Error
	} else {
		err = s.db.WithContext(ctx).Save(&draft).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return &draft, nil
}

// List returns all drafts, most recently touched first.
func (s *cartServiceImpl) List(ctx context.Context) ([]model.AbandonedCart, error) {
	var drafts []model.AbandonedCart
	if err := s.db.WithContext(ctx).Order("last_updated DESC").Find(&drafts).Error; err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// Delete removes a draft by its record id.
func (s *cartServiceImpl) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AbandonedCart{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupForOrder deletes drafts belonging to a just-placed order, matched
// by device id or by phone number. Legacy storefront builds stored the phone
// inside the raw payload under "number" or "phone", so those locations are
// matched as well.
func (s *cartServiceImpl) CleanupForOrder(ctx context.Context, phone, deviceID string) (int64, error) {
	tx := s.db.WithContext(ctx)

	var cond *gorm.DB
	if deviceID != "" {
		cond = tx.Where("device_id = ?", deviceID)
	}
	if phone != "" {
		phoneCond := tx.Where("phone = ?", phone).
			Or(datatypes.JSONQuery("payload").Equals(phone, "number")).
			Or(datatypes.JSONQuery("payload").Equals(phone, "phone"))
		if cond == nil {
			cond = phoneCond
		} else {
			cond = cond.Or(phoneCond)
		}
	}
	if cond == nil {
		return 0, nil
	}

	res := tx.Where(cond).Delete(&model.AbandonedCart{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clean up drafts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// draftFromOrder copies a ledger order into a fresh draft record for
// demotion. The full order snapshot goes into the payload; orders placed
// without a device id get a synthetic one so the unique device index holds.
func draftFromOrder(order *model.Order) *model.AbandonedCart {
	deviceID := order.DeviceID
	if deviceID == "" {
		deviceID = "moved-" + uuid.NewString()
	}
	payload, err := json.Marshal(order)
	if err != nil {
		payload = order.Items
	}
	return &model.AbandonedCart{
		ID:              uuid.NewString(),
		DeviceID:        deviceID,
		Name:            order.Name,
		Phone:           order.Phone,
		Address:         order.Address,
		Payload:         payload,
		Status:          model.StatusAbandoned,
		MovedFromActive: true,
		LastUpdated:     time.Now(),
	}
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// AbandonedCart is a partially completed checkout draft, keyed by the
// client-supplied device identifier. Saving again from the same device
// overwrites the draft in place. Demoted ledger orders also land here with
// MovedFromActive set.
type AbandonedCart struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DeviceID string `json:"device_id" gorm:"uniqueIndex;not null"`

	Name    string `json:"name"`
	Phone   string `json:"phone" gorm:"index"`
	Address string `json:"address"`

	// Payload keeps the raw draft body as the storefront sent it. Legacy
	// storefront versions put the phone number inside it under "number" or
	// "phone", so cleanup matches against those keys too.
	Payload datatypes.JSON `json:"payload,omitempty" gorm:"type:json"`

	Status          Status    `json:"status,omitempty" gorm:"type:varchar(16)"`
	MovedFromActive bool      `json:"moved_from_active"`
	LastUpdated     time.Time `json:"last_updated" gorm:"index"`
}

// TableName matches the storefront's partial-orders collection.
func (AbandonedCart) TableName() string { return "partial_orders" }

// PartialOrderRequest is the draft upsert payload. Everything beyond the
// device id is optional; the storefront saves whatever the customer has
// filled in so far.
type PartialOrderRequest struct {
	DeviceID string         `json:"device_id" binding:"required"`
	Name     string         `json:"name"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	Payload  datatypes.JSON `json:"payload"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Phone call statuses used by the confirmation team.
const (
	CallStatusPending   = "Pending"
	CallStatusConfirmed = "Confirmed"
)

// Order sources.
const (
	SourceWebsite = "Website"
	SourceManual  = "Manual"
)

// Sentinel values attached when the address classifier fails or the address
// cannot be resolved automatically.
const (
	DistrictUnknown  = "Unknown"
	ThanaManualCheck = "Manual Check"
)

// CustomerStats is a snapshot of the customer's order history taken at
// creation time. It is never recomputed afterwards.
type CustomerStats struct {
	IsReturningCustomer   bool   `json:"is_returning_customer"`
	TotalOrdersBeforeThis int64  `json:"total_orders_before_this"`
	CustomerType          string `json:"customer_type"` // "New", "Returning"
}

// Order is a row in the active order ledger.
type Order struct {
	ID      string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID int    `json:"order_id" gorm:"index"` // customer-facing numeric id

	Name     string `json:"name"`
	Phone    string `json:"phone" gorm:"index;not null"` // natural key for duplicate and history checks
	Address  string `json:"address"`
	DeviceID string `json:"device_id,omitempty" gorm:"index"`
	ClientIP string `json:"client_ip,omitempty"`

	// Items holds whatever the storefront sent: a bare quantity or a list of
	// line items. ResolveQuantity normalizes it when stock moves.
	Items          datatypes.JSON  `json:"items,omitempty" gorm:"type:json"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	TotalValue     decimal.Decimal `json:"total_value" gorm:"type:decimal(12,2)"`
	ShippingMethod string          `json:"shipping_method"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2)"`
	Note           string          `json:"note"`

	Status          Status        `json:"status" gorm:"type:varchar(16);index"`
	Source          string        `json:"source"`
	PhoneCallStatus string        `json:"phone_call_status"`
	CustomerStats   CustomerStats `json:"customer_stats" gorm:"embedded;embeddedPrefix:customer_"`

	// Address classifier enrichment.
	District string `json:"district,omitempty"`
	Thana    string `json:"thana,omitempty"`

	// Courier mirror fields, populated once the order is handed to the
	// courier gateway.
	CourierConsignmentID string `json:"courier_consignment_id,omitempty" gorm:"index"`
	CourierTrackingCode  string `json:"courier_tracking_code,omitempty"`
	CourierStatus        string `json:"courier_status,omitempty"`

	// InventoryDeducted flips to true at most once per order; stock is
	// never decremented twice for the same order.
	InventoryDeducted bool `json:"inventory_deducted"`
	IsRestocked       bool `json:"is_restocked"`

	CreatedAt   time.Time  `json:"created_at"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
}

// TableName keeps the table name the dashboard has always used.
func (Order) TableName() string { return "all_orders" }

// StampStatusTime writes the lifecycle timestamp matching the given status.
// A timestamp is only written while unset, so re-applying a status never
// moves it.
func (o *Order) StampStatusTime(s Status, now time.Time) {
	switch s {
	case StatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case StatusCancelled:
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
	case StatusReturned:
		if o.ReturnedAt == nil {
			o.ReturnedAt = &now
		}
	}
}

// OrderRequest is the order placement payload.
type OrderRequest struct {
	Name           string          `json:"name" binding:"required"`
	Phone          string          `json:"phone" binding:"required"`
	Address        string          `json:"address"`
	DeviceID       string          `json:"device_id"`
	Items          datatypes.JSON  `json:"items"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalValue     decimal.Decimal `json:"total_value"`
	ShippingMethod string          `json:"shipping_method"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Note           string          `json:"note"`
	CallStatus     string          `json:"phone_call_status"`
}

// StatusUpdateRequest is the status transition payload.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// CallStatusRequest updates the confirmation call status.
type CallStatusRequest struct {
	PhoneCallStatus string `json:"phone_call_status" binding:"required"`
}

// ShippingMethodRequest updates the shipping method and optionally its cost.
type ShippingMethodRequest struct {
	ShippingMethod string           `json:"shipping_method" binding:"required"`
	ShippingCost   *decimal.Decimal `json:"shipping_cost"`
}

// PriceRequest updates the order's pricing fields.
type PriceRequest struct {
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	TotalValue *decimal.Decimal `json:"total_value"`
}

// NoteRequest updates the operator note.
type NoteRequest struct {
	Note string `json:"note"`
}

package model

import "time"

// StockLevelID is the primary key of the single stock row.
const StockLevelID = 1

// DefaultStockQuantity seeds the stock row on first startup.
const DefaultStockQuantity = 1000

// StockLevel is the single global inventory counter. It is adjusted with
// atomic quantity = quantity ± n updates and may go negative; there is no
// lower bound.
type StockLevel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the stock table name.
func (StockLevel) TableName() string { return "stock_levels" }

// CounterOrderID names the counter row that backs numeric order ids.
const CounterOrderID = "order_id"

// OrderIDBase is the counter seed; the first reserved id is OrderIDBase + 1.
const OrderIDBase = 500

// Counter is a named monotonic counter. Reservations increment the row
// inside the caller's transaction so concurrent readers cannot observe the
// same value.
type Counter struct {
	Name  string `gorm:"primaryKey;type:varchar(32)"`
	Value int    `gorm:"not null"`
}

// TableName sets the counter table name.
func (Counter) TableName() string { return "counters" }

package model

import "time"

// BlockedUser is one banned identifier. The identifier may be a phone
// number, a device id, or an IP address; all three are matched against the
// same column with no type discrimination. Entries are permanent until
// removed by an operator.
type BlockedUser struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Identifier string    `json:"identifier" gorm:"uniqueIndex;not null"`
	Note       string    `json:"note"`
	BlockedAt  time.Time `json:"blocked_at" gorm:"index"`
}

// TableName sets the admin blocklist table name.
func (BlockedUser) TableName() string { return "blocked_users" }

// BlockRequest adds an identifier to the blocklist.
type BlockRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Note       string `json:"note"`
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order statuses. "paid" is terminal and is only ever written by the
// payment-confirmation webhook; clients can request "placed" at most.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// SnapshotVersion is the current schema version of the serialized
// items/address blobs stored on an order.
const SnapshotVersion = 1

// OrderLine is one snapshotted cart line: the item's identity, name and
// unit price as they were at checkout time, decoupled from later catalogue
// edits.
type OrderLine struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Qty        int    `json:"qty"`
}

// TotalCents sums the snapshot lines in minor units.
func TotalCents(lines []OrderLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.PriceCents * int64(l.Qty)
	}
	return total
}

// Order is immutable once created except for its status field. Items and
// address are stored as serialized snapshots so receipts stay accurate even
// after the catalogue or the account changes.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	ItemsJSON       string          `gorm:"type:text;not null" json:"-"`
	AddressJSON     string          `gorm:"type:text;not null" json:"-"`
	SnapshotVersion int             `gorm:"not null;default:1" json:"snapshot_version"`
	DeliveryMethod  string          `gorm:"not null" json:"delivery_method"` // "collect" or "deliver"
	TotalCents      int64           `gorm:"not null" json:"total_cents"`
	Status          string          `gorm:"not null;default:'placed'" json:"status"`
	StripeSessionID *string         `gorm:"uniqueIndex" json:"-"` // webhook idempotency key
	Items           []OrderLine     `gorm:"-" json:"items"`
	Address         AddressSnapshot `gorm:"-" json:"address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// EncodeSnapshots serializes Items and Address into the stored JSON blobs.
// Call before inserting.
func (o *Order) EncodeSnapshots() error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items snapshot: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("failed to encode address snapshot: %w", err)
	}
	o.ItemsJSON = string(items)
	o.AddressJSON = string(address)
	o.SnapshotVersion = SnapshotVersion
	return nil
}

// DecodeSnapshots populates Items and Address from the stored JSON blobs.
// Call after loading.
func (o *Order) DecodeSnapshots() error {
	if o.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(o.ItemsJSON), &o.Items); err != nil {
			return fmt.Errorf("failed to decode items snapshot: %w", err)
		}
	}
	if o.AddressJSON != "" {
		if err := json.Unmarshal([]byte(o.AddressJSON), &o.Address); err != nil {
			return fmt.Errorf("failed to decode address snapshot: %w", err)
		}
	}
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a single table's comanda. Total is derived from the
// items and is recomputed on every item mutation; it is never accepted
// from a client.
type Order struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant     `gorm:"foreignKey:RestaurantID" json:"-"`
	TableLabel   string         `gorm:"not null" json:"table_label"`
	ServerName   string         `gorm:"not null" json:"server_name"`
	Status       OrderStatus    `gorm:"not null;default:'open'" json:"status"`
	Total        float64        `gorm:"not null;default:0;check:total >= 0" json:"total"`
	PaymentRef   *string        `json:"payment_ref,omitempty"` // opaque, set when the order is closed
	Items        []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

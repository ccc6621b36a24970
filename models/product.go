package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a menu entry. The core reads it only for price lookup; the
// price stored here is the live menu price, not what an order was charged;
// order items snapshot the price at the moment they are added.
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant     `gorm:"foreignKey:RestaurantID" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Description  *string        `json:"description,omitempty"`
	Price        float64        `gorm:"not null;check:price >= 0" json:"price"`
	Available    bool           `gorm:"not null;default:true" json:"available"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

package models

import "time"

// OrderItem is one product-quantity line within an order. UnitPrice is a
// snapshot of the catalog price taken when the line was added or last
// edited; later menu price changes do not touch existing lines, so closed
// orders keep the price the customer was actually charged.
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	Product      Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity     int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice    float64   `gorm:"not null;check:unit_price >= 0" json:"unit_price"`
	Subtotal     float64   `gorm:"not null" json:"subtotal"` // quantity * unit_price
	Note         *string   `gorm:"size:255" json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

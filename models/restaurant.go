package models

import (
	"time"

	"gorm.io/gorm"
)

// Restaurant is the tenant boundary: every user, product and order belongs
// to exactly one restaurant, and queries are always scoped by its ID.
type Restaurant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   *string        `json:"address,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Restaurant model
func (Restaurant) TableName() string {
	return "restaurants"
}

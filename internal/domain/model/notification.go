package model

import "time"

const (
	NotificationLowStock    = "LOW_STOCK"
	NotificationOrderPlaced = "ORDER_PLACED"
)

type Notification struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;index" json:"user_id"`
	Type             string    `gorm:"type:varchar(50);not null;index" json:"type"`
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`
	Message          string    `gorm:"type:text" json:"message"`
	RelatedProductID *int64    `gorm:"index" json:"related_product_id,omitempty"`
	RelatedOrderID   *int64    `gorm:"index" json:"related_order_id,omitempty"`
	IsRead           bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

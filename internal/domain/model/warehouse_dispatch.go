package model

import "time"

// 倉庫からの出荷記録。在庫減算・台帳記録と同一トランザクションで作る。
type WarehouseDispatch struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID    int64     `gorm:"not null;index" json:"product_id"`
	UserID       int64     `gorm:"index" json:"user_id"`
	Quantity     int64     `gorm:"not null" json:"quantity"`
	CustomerName string    `gorm:"type:varchar(255);not null" json:"customer_name"`
	DateReleased time.Time `gorm:"not null" json:"date_released"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

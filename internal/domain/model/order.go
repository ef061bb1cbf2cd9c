package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusToShip    OrderStatus = "to_ship"
	OrderStatusProcess   OrderStatus = "processing"
	OrderStatusToDeliver OrderStatus = "to_deliver"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusPendingCOD          PaymentStatus = "pending_cod"
	PaymentStatusAwaitingPayment     PaymentStatus = "awaiting_payment"
	PaymentStatusAwaitingBankDeposit PaymentStatus = "awaiting_bank_transfer"
	PaymentStatusPaid                PaymentStatus = "paid"
	PaymentStatusFailed              PaymentStatus = "failed"
)

// 注文はカートの1明細ごとに1行（既存データ互換のため）。
type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"not null;index" json:"user_id"`
	ProductID     int64           `gorm:"column:cocolumber_id;not null;index" json:"cocolumber_id"`
	StaffID       int64           `gorm:"index" json:"staff_id"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(50);not null;default:'pending'" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CourierName   string          `gorm:"type:varchar(100)" json:"courier_name,omitempty"`
	TrackingNo    string          `gorm:"column:tracking_number;type:varchar(100)" json:"tracking_number,omitempty"`
	ShippedDate   *time.Time      `json:"shipped_date,omitempty"`
	DeliveredDate *time.Time      `json:"delivered_date,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	OrderNotes    string          `gorm:"type:text" json:"order_notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

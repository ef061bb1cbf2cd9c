package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64           `gorm:"not null;index" json:"order_id"`
	UserID            int64           `gorm:"not null;index" json:"user_id"`
	PaymongoPaymentID string          `gorm:"type:varchar(100);index" json:"paymongo_payment_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            string          `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	PaymentMethod     string          `gorm:"type:varchar(50)" json:"payment_method"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	FailedAt          *time.Time      `json:"failed_at,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

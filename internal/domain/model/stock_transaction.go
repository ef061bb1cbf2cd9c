package model

import "time"

type StockTransactionType string

const (
	StockTransactionIn       StockTransactionType = "stock_in"
	StockTransactionDispatch StockTransactionType = "dispatch"
	StockTransactionAdjust   StockTransactionType = "adjust"
)

// 在庫増減の追記専用台帳。Quantityは符号付きで、合計が在庫の増減と一致する。
type StockTransaction struct {
	ID        int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64                `gorm:"not null;index" json:"product_id"`
	UserID    int64                `gorm:"index" json:"user_id"`
	Type      StockTransactionType `gorm:"column:transaction_type;type:varchar(20);not null;index" json:"transaction_type"`
	Quantity  int64                `gorm:"not null" json:"quantity"`
	Reason    string               `gorm:"type:varchar(255)" json:"reason,omitempty"`
	CreatedAt time.Time            `gorm:"not null;autoCreateTime" json:"created_at"`
}

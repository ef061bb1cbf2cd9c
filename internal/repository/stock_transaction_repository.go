package repository

import (
	"context"

	"cocolytics/internal/domain/model"
)

// 追記専用の在庫台帳。更新・削除は約束しない。
type StockTransactionRepository interface {
	Create(ctx context.Context, tx model.StockTransaction) error
	ListByProductID(ctx context.Context, productID int64, limit int) ([]model.StockTransaction, error)
}

package repository

import (
	"context"

	"cocolytics/internal/domain/model"

	"gorm.io/gorm"
)

type StockTransactionGormRepository struct {
	db *gorm.DB
}

func NewStockTransactionGormRepository(db *gorm.DB) *StockTransactionGormRepository {
	return &StockTransactionGormRepository{db: db}
}

// 台帳に1件追記
func (r *StockTransactionGormRepository) Create(ctx context.Context, tx model.StockTransaction) error {
	return r.db.WithContext(ctx).Create(&tx).Error
}

// 商品の履歴を新しい順に返す
func (r *StockTransactionGormRepository) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.StockTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var items []model.StockTransaction
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

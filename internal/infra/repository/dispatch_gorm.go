package repository

import (
	"context"

	"cocolytics/internal/domain/model"

	"gorm.io/gorm"
)

type WarehouseDispatchGormRepository struct {
	db *gorm.DB
}

func NewWarehouseDispatchGormRepository(db *gorm.DB) *WarehouseDispatchGormRepository {
	return &WarehouseDispatchGormRepository{db: db}
}

func (r *WarehouseDispatchGormRepository) Create(ctx context.Context, d model.WarehouseDispatch) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return 0, err
	}
	return d.ID, nil
}

func (r *WarehouseDispatchGormRepository) ListByProductID(ctx context.Context, productID int64, limit int) ([]model.WarehouseDispatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var items []model.WarehouseDispatch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("date_released desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

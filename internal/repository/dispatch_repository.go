package repository

import (
	"context"

	"cocolytics/internal/domain/model"
)

type WarehouseDispatchRepository interface {
	Create(ctx context.Context, d model.WarehouseDispatch) (int64, error)
	ListByProductID(ctx context.Context, productID int64, limit int) ([]model.WarehouseDispatch, error)
}

package repository

import (
	"context"
	"errors"

	"cocolytics/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page    int
	Limit   int
	Size    string
	StaffID *int64
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	// 在庫がしきい値未満の商品（低在庫アラート用）
	ListLowStock(ctx context.Context, threshold int64) ([]model.Product, error)
}

package repository

import (
	"context"
	"time"

	"cocolytics/internal/domain/model"
)

type OrderListFilter struct {
	Page    int
	Limit   int
	Status  string
	StaffID *int64
}

type ShipInfo struct {
	CourierName string
	TrackingNo  string
	ShippedDate time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// staffID が指定されたときは自分の注文だけ更新できる（WHERE句で絞る）
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, staffID *int64) error
	Ship(ctx context.Context, orderID int64, info ShipInfo, staffID *int64) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, paidAt *time.Time) error

	// スタッフ・管理者用の注文一覧
	ListAll(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
}

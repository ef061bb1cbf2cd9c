package repository

import (
	"context"

	repo "cocolytics/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	products      repo.ProductRepository
	inventory     repo.InventoryRepository
	stockTxs      repo.StockTransactionRepository
	dispatches    repo.WarehouseDispatchRepository
	payments      repo.PaymentRepository
	notifications repo.NotificationRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                       { return r.orders }
func (r *txReposGorm) Products() repo.ProductRepository                   { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository                { return r.inventory }
func (r *txReposGorm) StockTransactions() repo.StockTransactionRepository { return r.stockTxs }
func (r *txReposGorm) Dispatches() repo.WarehouseDispatchRepository       { return r.dispatches }
func (r *txReposGorm) Payments() repo.PaymentRepository                   { return r.payments }
func (r *txReposGorm) Notifications() repo.NotificationRepository         { return r.notifications }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返したら全部ロールバックされる
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			products:      NewProductGormRepository(tx),
			inventory:     NewInventoryGormRepository(tx),
			stockTxs:      NewStockTransactionGormRepository(tx),
			dispatches:    NewWarehouseDispatchGormRepository(tx),
			payments:      NewPaymentGormRepository(tx),
			notifications: NewNotificationGormRepository(tx),
		}
		return fn(r)
	})
}

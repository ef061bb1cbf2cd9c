package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"cocolytics/internal/domain/model"
	infraRepo "cocolytics/internal/infra/repository"
	"cocolytics/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// インメモリSQLiteでDBを作る。テストごとに独立したDB。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:usecase_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	//共有キャッシュのインメモリDBは接続1本に絞る（ロック回避）
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.StockTransaction{},
		&model.WarehouseDispatch{},
		&model.Payment{},
		&model.Notification{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func seedUser(t *testing.T, db *gorm.DB, role model.Role) model.User {
	t.Helper()

	u := model.User{
		Name:         "Test " + string(role),
		Email:        fmt.Sprintf("%s%d@example.com", role, testDBSeq.Add(1)),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, staffID int64, size string, length int64, stock int64) model.Product {
	t.Helper()

	p := model.Product{
		Size:    size,
		Length:  decimal.NewFromInt(length),
		Stock:   stock,
		StaffID: staffID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func currentStock(t *testing.T, db *gorm.DB, productID int64) int64 {
	t.Helper()

	var p model.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.Stock
}

func ledgerEntries(t *testing.T, db *gorm.DB, productID int64) []model.StockTransaction {
	t.Helper()

	var items []model.StockTransaction
	require.NoError(t, db.Where("product_id = ?", productID).Order("id asc").Find(&items).Error)
	return items
}

func ledgerSum(t *testing.T, db *gorm.DB, productID int64) int64 {
	t.Helper()

	var sum int64
	for _, e := range ledgerEntries(t, db, productID) {
		sum += e.Quantity
	}
	return sum
}

// 決済ゲートウェイの偽物
type fakeGateway struct {
	sourceErr    error
	paymentErr   error
	sourceCalls  int
	paymentCalls int
	lastAmount   int64
	chargeStatus string
}

func (g *fakeGateway) CreateSource(ctx context.Context, method string, amountInCentavos int64, successURL, failedURL string) (usecase.PaymentSource, error) {
	g.sourceCalls++
	g.lastAmount = amountInCentavos
	if g.sourceErr != nil {
		return usecase.PaymentSource{}, g.sourceErr
	}
	return usecase.PaymentSource{
		ID:          fmt.Sprintf("src_test_%d", g.sourceCalls),
		CheckoutURL: "https://checkout.example.com/src",
	}, nil
}

func (g *fakeGateway) CreatePayment(ctx context.Context, sourceID string, amountInCentavos int64, description string) (usecase.PaymentCharge, error) {
	g.paymentCalls++
	g.lastAmount = amountInCentavos
	if g.paymentErr != nil {
		return usecase.PaymentCharge{}, g.paymentErr
	}
	status := g.chargeStatus
	if status == "" {
		status = "paid"
	}
	return usecase.PaymentCharge{ID: fmt.Sprintf("pay_test_%d", g.paymentCalls), Status: status}, nil
}

func newOrderUsecase(db *gorm.DB, gw usecase.PaymentGateway) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(
		infraRepo.NewTxManagerGorm(db),
		infraRepo.NewProductGormRepository(db),
		gw,
		"http://localhost:5173",
	)
}

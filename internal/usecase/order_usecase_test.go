package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cocolytics/internal/domain/model"
	"cocolytics/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_CashOnDelivery(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 100)

	gw := &fakeGateway{}
	uc := newOrderUsecase(db, gw)

	out, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 12}},
		PaymentMethod: usecase.PaymentMethodCOD,
		ShippingFee:   decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	// 50×12=600、5%引きで570、送料80で650
	assert.True(t, decimal.NewFromInt(600).Equal(out.Subtotal), "subtotal %s", out.Subtotal)
	assert.True(t, decimal.NewFromInt(30).Equal(out.DiscountAmount))
	assert.True(t, decimal.NewFromInt(650).Equal(out.TotalAmount), "total %s", out.TotalAmount)
	assert.Equal(t, model.PaymentStatusPendingCOD, out.PaymentStatus)
	assert.Empty(t, out.PaymentURL)
	assert.Len(t, out.OrderIDs, 1)

	//CODではゲートウェイを呼ばない
	assert.Equal(t, 0, gw.sourceCalls)

	//在庫と台帳
	assert.Equal(t, int64(88), currentStock(t, db, p.ID))
	entries := ledgerEntries(t, db, p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StockTransactionDispatch, entries[0].Type)
	assert.Equal(t, int64(-12), entries[0].Quantity)

	//注文行
	var order model.Order
	require.NoError(t, db.First(&order, out.OrderIDs[0]).Error)
	assert.Equal(t, model.OrderStatusToShip, order.Status)
	assert.Equal(t, buyer.ID, order.UserID)
	assert.Equal(t, staff.ID, order.StaffID)
	assert.True(t, decimal.NewFromInt(600).Equal(order.TotalAmount))
	assert.Contains(t, order.OrderNotes, "Payment method: cash_on_delivery")

	//担当スタッフへの通知
	var notes []model.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", staff.ID, model.NotificationOrderPlaced).Find(&notes).Error)
	assert.Len(t, notes, 1)
}

func TestPlaceOrder_MultipleLineItems(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p1 := seedProduct(t, db, staff.ID, "Medium", 20, 50)
	p2 := seedProduct(t, db, staff.ID, "Small", 14, 50)

	uc := newOrderUsecase(db, &fakeGateway{})

	out, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items: []usecase.OrderItemInput{
			{ProductID: p1.ID, Quantity: 3},
			{ProductID: p2.ID, Quantity: 2},
		},
		PaymentMethod: usecase.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	//明細ごとに1注文行
	assert.Len(t, out.OrderIDs, 2)
	assert.Equal(t, model.PaymentStatusAwaitingBankDeposit, out.PaymentStatus)

	assert.Equal(t, int64(47), currentStock(t, db, p1.ID))
	assert.Equal(t, int64(48), currentStock(t, db, p2.ID))
}

func TestPlaceOrder_EWalletCreatesSourceAndPaymentRow(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 10)

	gw := &fakeGateway{}
	uc := newOrderUsecase(db, gw)

	out, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: usecase.PaymentMethodGcash,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusAwaitingPayment, out.PaymentStatus)
	assert.Equal(t, "https://checkout.example.com/src", out.PaymentURL)
	assert.Equal(t, 1, gw.sourceCalls)

	// 100ペソ=10000センタボ
	assert.Equal(t, int64(10000), gw.lastAmount)

	var payment model.Payment
	require.NoError(t, db.Where("user_id = ?", buyer.ID).First(&payment).Error)
	assert.Equal(t, out.OrderIDs[0], payment.OrderID)
	assert.Equal(t, "src_test_1", payment.PaymongoPaymentID)
	assert.Equal(t, "pending", payment.Status)
}

func TestPlaceOrder_GatewayFailureLeavesStockUntouched(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 10)

	gw := &fakeGateway{sourceErr: errors.New("paymongo down")}
	uc := newOrderUsecase(db, gw)

	_, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: usecase.PaymentMethodGcash,
	})

	var ppe *usecase.PaymentProviderError
	require.ErrorAs(t, err, &ppe)

	//ゲートウェイは在庫を触る前に呼ぶので、失敗しても在庫はそのまま
	assert.Equal(t, int64(10), currentStock(t, db, p.ID))
	assert.Empty(t, ledgerEntries(t, db, p.ID))

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrder_InsufficientStockRollsBackWholeOrder(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p1 := seedProduct(t, db, staff.ID, "Medium", 20, 100)
	p2 := seedProduct(t, db, staff.ID, "Small", 14, 1)

	uc := newOrderUsecase(db, &fakeGateway{})

	_, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items: []usecase.OrderItemInput{
			{ProductID: p1.ID, Quantity: 5},
			{ProductID: p2.ID, Quantity: 3},
		},
		PaymentMethod: usecase.PaymentMethodCOD,
	})

	var ise *usecase.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, p2.ID, ise.ProductID)
	assert.Equal(t, int64(1), ise.Available)
	assert.Equal(t, int64(3), ise.Requested)

	//1品目の減算もロールバックされる
	assert.Equal(t, int64(100), currentStock(t, db, p1.ID))
	assert.Equal(t, int64(1), currentStock(t, db, p2.ID))
	assert.Empty(t, ledgerEntries(t, db, p1.ID))

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	buyer := seedUser(t, db, model.RoleUser)
	uc := newOrderUsecase(db, &fakeGateway{})

	_, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: 9999, Quantity: 1}},
		PaymentMethod: usecase.PaymentMethodCOD,
	})

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestPlaceOrder_Validation(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 10)
	uc := newOrderUsecase(db, &fakeGateway{})

	cases := []struct {
		name string
		in   usecase.PlaceOrderInput
	}{
		{"no items", usecase.PlaceOrderInput{PaymentMethod: usecase.PaymentMethodCOD}},
		{"bad method", usecase.PlaceOrderInput{
			Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: "check",
		}},
		{"zero quantity", usecase.PlaceOrderInput{
			Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 0}},
			PaymentMethod: usecase.PaymentMethodCOD,
		}},
		{"negative shipping", usecase.PlaceOrderInput{
			Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: usecase.PaymentMethodCOD,
			ShippingFee:   decimal.NewFromInt(-1),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.PlaceOrder(context.Background(), buyer.ID, tc.in)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok, "want HTTPError, got %v", err)
			assert.Equal(t, 400, he.Status)
		})
	}
}

// 同時注文でも在庫が負にならず、成功数と減算が一致する
func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 10)

	uc := newOrderUsecase(db, &fakeGateway{})

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
				Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
				PaymentMethod: usecase.PaymentMethodCOD,
			})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	final := currentStock(t, db, p.ID)
	assert.GreaterOrEqual(t, final, int64(0), "stock must never go negative")
	assert.Equal(t, int64(10)-final, int64(successes), "each success decrements exactly once")
	assert.Equal(t, -int64(successes), ledgerSum(t, db, p.ID))
}

func TestUpdateStatus_StaffScopedToOwnOrders(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, model.RoleStaff)
	other := seedUser(t, db, model.RoleStaff)
	admin := seedUser(t, db, model.RoleAdmin)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, owner.ID, "Medium", 20, 10)

	uc := newOrderUsecase(db, &fakeGateway{})

	out, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: usecase.PaymentMethodCOD,
	})
	require.NoError(t, err)
	orderID := out.OrderIDs[0]

	//他のスタッフは触れない
	err = uc.UpdateStatus(context.Background(), usecase.Principal{ID: other.ID, Role: model.RoleStaff}, orderID, model.OrderStatusProcess)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)

	//担当スタッフはOK
	err = uc.UpdateStatus(context.Background(), usecase.Principal{ID: owner.ID, Role: model.RoleStaff}, orderID, model.OrderStatusProcess)
	require.NoError(t, err)

	//adminは誰の注文でもOK
	err = uc.UpdateStatus(context.Background(), usecase.Principal{ID: admin.ID, Role: model.RoleAdmin}, orderID, model.OrderStatusDelivered)
	require.NoError(t, err)

	var order model.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, model.OrderStatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredDate)
}

func TestUpdateStatus_RejectsUnknownStatusAndUserRole(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	uc := newOrderUsecase(db, &fakeGateway{})

	err := uc.UpdateStatus(context.Background(), usecase.Principal{ID: staff.ID, Role: model.RoleStaff}, 1, "teleported")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)

	err = uc.UpdateStatus(context.Background(), usecase.Principal{ID: 1, Role: model.RoleUser}, 1, model.OrderStatusShipped)
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 403, he.Status)
}

func TestShip_SetsCourierAndTracking(t *testing.T) {
	db := newTestDB(t)
	staff := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p := seedProduct(t, db, staff.ID, "Medium", 20, 10)

	uc := newOrderUsecase(db, &fakeGateway{})

	out, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items:         []usecase.OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: usecase.PaymentMethodCOD,
	})
	require.NoError(t, err)

	principal := usecase.Principal{ID: staff.ID, Role: model.RoleStaff}

	//必須項目なし
	err = uc.Ship(context.Background(), principal, out.OrderIDs[0], usecase.ShipOrderInput{})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 400, he.Status)

	err = uc.Ship(context.Background(), principal, out.OrderIDs[0], usecase.ShipOrderInput{
		CourierName: "LBC",
		TrackingNo:  "LBC-12345",
	})
	require.NoError(t, err)

	var order model.Order
	require.NoError(t, db.First(&order, out.OrderIDs[0]).Error)
	assert.Equal(t, model.OrderStatusToDeliver, order.Status)
	assert.Equal(t, "LBC", order.CourierName)
	assert.Equal(t, "LBC-12345", order.TrackingNo)
	assert.NotNil(t, order.ShippedDate)
}

func TestListOrders(t *testing.T) {
	db := newTestDB(t)
	staff1 := seedUser(t, db, model.RoleStaff)
	staff2 := seedUser(t, db, model.RoleStaff)
	buyer := seedUser(t, db, model.RoleUser)
	p1 := seedProduct(t, db, staff1.ID, "Medium", 20, 10)
	p2 := seedProduct(t, db, staff2.ID, "Small", 14, 10)

	uc := newOrderUsecase(db, &fakeGateway{})

	_, err := uc.PlaceOrder(context.Background(), buyer.ID, usecase.PlaceOrderInput{
		Items: []usecase.OrderItemInput{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		},
		PaymentMethod: usecase.PaymentMethodCOD,
	})
	require.NoError(t, err)

	//購入者には2件
	items, total, err := uc.ListMyOrders(context.Background(), buyer.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	//スタッフには自分宛の1件だけ
	items, total, err = uc.ListAllOrders(context.Background(), usecase.Principal{ID: staff1.ID, Role: model.RoleStaff}, 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, staff1.ID, items[0].StaffID)

	//adminには全部
	admin := seedUser(t, db, model.RoleAdmin)
	_, total, err = uc.ListAllOrders(context.Background(), usecase.Principal{ID: admin.ID, Role: model.RoleAdmin}, 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	//一般ユーザーは全件一覧を見られない
	_, _, err = uc.ListAllOrders(context.Background(), usecase.Principal{ID: buyer.ID, Role: model.RoleUser}, 1, 20, "")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 403, he.Status)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cocolytics/internal/domain/model"
	"cocolytics/internal/pricing"
	repo "cocolytics/internal/repository"

	"github.com/shopspring/decimal"
)

// 外部決済（PayMongo）を呼ぶ約束。main.goでアダプタを注入する。
type PaymentSource struct {
	ID          string
	CheckoutURL string
}

type PaymentCharge struct {
	ID     string
	Status string
}

type PaymentGateway interface {
	CreateSource(ctx context.Context, method string, amountInCentavos int64, successURL, failedURL string) (PaymentSource, error)
	CreatePayment(ctx context.Context, sourceID string, amountInCentavos int64, description string) (PaymentCharge, error)
}

// 支払い方法の固定セット
const (
	PaymentMethodCOD          = "cash_on_delivery"
	PaymentMethodGcash        = "gcash"
	PaymentMethodGrabPay      = "grab_pay"
	PaymentMethodPaymaya      = "paymaya"
	PaymentMethodBankTransfer = "bank_transfer"
)

func isEWalletMethod(method string) bool {
	switch method {
	case PaymentMethodGcash, PaymentMethodGrabPay, PaymentMethodPaymaya:
		return true
	default:
		return false
	}
}

func isValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCOD, PaymentMethodGcash, PaymentMethodGrabPay, PaymentMethodPaymaya, PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

type OrderUsecase struct {
	tx          repo.TransactionManager
	products    repo.ProductRepository
	gateway     PaymentGateway
	frontendURL string
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	gateway PaymentGateway,
	frontendURL string,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		products:    products,
		gateway:     gateway,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

type DeliveryAddressInput struct {
	FullName   string
	Phone      string
	Street     string
	Barangay   string
	City       string
	Province   string
	PostalCode string
	Notes      string
}

type PlaceOrderInput struct {
	Items           []OrderItemInput
	PaymentMethod   string
	ShippingFee     decimal.Decimal
	DeliveryAddress *DeliveryAddressInput
}

type PlaceOrderOutput struct {
	OrderIDs       []int64              `json:"order_ids"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	DiscountRate   decimal.Decimal      `json:"bulk_discount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	ShippingFee    decimal.Decimal      `json:"shipping_fee"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	PaymentMethod  string               `json:"payment_method"`
	PaymentStatus  model.PaymentStatus  `json:"payment_status"`
	PaymentURL     string               `json:"payment_url,omitempty"`
}

// PlaceOrder は注文作成の本体。
// 明細ごとに「在庫が足りるときだけ減算」→ 注文行作成 → 台帳追記を
// 1トランザクションで行う。どれか1つでも失敗したら全部ロールバック。
// eウォレットの決済ソース作成は在庫を触る前に行う。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (PlaceOrderOutput, error) {
	if userID <= 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "no items in order")
	}
	if !isValidPaymentMethod(in.PaymentMethod) {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}
	if in.ShippingFee.IsNegative() {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping fee must be >= 0")
	}
	for _, item := range in.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "each item must have an id and a positive quantity")
		}
	}

	//商品を全部取得して価格計算の材料にする
	productsByID := make(map[int64]model.Product, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, item := range in.Items {
		p, err := u.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusNotFound, fmt.Sprintf("product with ID %d not found", item.ProductID))
		}
		if err != nil {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		productsByID[item.ProductID] = p
		lines = append(lines, pricing.Line{
			Size:         p.Size,
			Length:       p.Length,
			QualityGrade: p.QualityGrade,
			Quantity:     item.Quantity,
		})
	}

	breakdown := pricing.OrderTotal(lines)
	grandTotal := breakdown.Total.Add(in.ShippingFee)

	//支払い方法ごとのステータス。eウォレットは在庫を触る前にソースを作る
	paymentStatus := model.PaymentStatusPending
	var source PaymentSource

	switch {
	case in.PaymentMethod == PaymentMethodCOD:
		paymentStatus = model.PaymentStatusPendingCOD
	case in.PaymentMethod == PaymentMethodBankTransfer:
		paymentStatus = model.PaymentStatusAwaitingBankDeposit
	case isEWalletMethod(in.PaymentMethod):
		centavos := grandTotal.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		s, err := u.gateway.CreateSource(ctx,
			in.PaymentMethod,
			centavos,
			u.frontendURL+"/payment-success",
			u.frontendURL+"/payment-failed",
		)
		if err != nil {
			return PlaceOrderOutput{}, &PaymentProviderError{Err: err}
		}
		source = s
		paymentStatus = model.PaymentStatusAwaitingPayment
	}

	notes := buildOrderNotes(in, source.ID)

	var orderIDs []int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, item := range in.Items {
			p := productsByID[item.ProductID]

			//在庫チェックと減算は1文のUPDATEで行う（同時注文でも負にならない）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				//エラー表示用に現在庫を読み直す
				current, ferr := r.Products().FindByID(ctx, item.ProductID)
				available := int64(0)
				if ferr == nil {
					available = current.Stock
				}
				return &InsufficientStockError{
					ProductID: item.ProductID,
					Available: available,
					Requested: item.Quantity,
				}
			}

			unit := pricing.UnitPrice(p.Size, p.Length, p.QualityGrade)
			lineTotal := unit.Mul(decimal.NewFromInt(item.Quantity))

			orderID, err := r.Orders().Create(ctx, model.Order{
				UserID:        userID,
				ProductID:     item.ProductID,
				StaffID:       p.StaffID,
				Quantity:      item.Quantity,
				Status:        model.OrderStatusToShip,
				PaymentStatus: paymentStatus,
				TotalAmount:   lineTotal,
				OrderNotes:    notes,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			orderIDs = append(orderIDs, orderID)

			//台帳にも残す（符号付き。台帳の合計＝在庫の増減）
			if err := r.StockTransactions().Create(ctx, model.StockTransaction{
				ProductID: item.ProductID,
				UserID:    userID,
				Type:      model.StockTransactionDispatch,
				Quantity:  -item.Quantity,
				Reason:    fmt.Sprintf("order %d", orderID),
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//担当スタッフに新規注文を知らせる
			if p.StaffID > 0 {
				oid := orderID
				if err := r.Notifications().Create(ctx, model.Notification{
					UserID:         p.StaffID,
					Type:           model.NotificationOrderPlaced,
					Title:          "New order received",
					Message:        fmt.Sprintf("Order #%d: %d pcs of cocolumber #%d", orderID, item.Quantity, item.ProductID),
					RelatedOrderID: &oid,
				}); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		//決済ソースを作った場合は支払いレコードも同じTxで残す
		if source.ID != "" {
			if _, err := r.Payments().Create(ctx, model.Payment{
				OrderID:           orderIDs[0],
				UserID:            userID,
				PaymongoPaymentID: source.ID,
				Amount:            grandTotal,
				Status:            "pending",
				PaymentMethod:     in.PaymentMethod,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	return PlaceOrderOutput{
		OrderIDs:       orderIDs,
		Subtotal:       breakdown.Subtotal,
		DiscountRate:   breakdown.DiscountRate,
		DiscountAmount: breakdown.DiscountAmount,
		ShippingFee:    in.ShippingFee,
		TotalAmount:    grandTotal,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  paymentStatus,
		PaymentURL:     source.CheckoutURL,
	}, nil
}

// 注文メモ（支払い方法・決済ID・配送先・送料）を1行のテキストにまとめる
func buildOrderNotes(in PlaceOrderInput, paymentSourceID string) string {
	parts := []string{"Payment method: " + in.PaymentMethod}

	if paymentSourceID != "" {
		parts = append(parts, "PayMongo ID: "+paymentSourceID)
	}

	if in.DeliveryAddress != nil {
		addr := formatDeliveryAddress(*in.DeliveryAddress)
		if addr != "" {
			parts = append(parts, "Delivery Address: "+addr)
		}
	}

	if in.ShippingFee.IsPositive() {
		parts = append(parts, "Shipping Fee: ₱"+in.ShippingFee.StringFixed(2))
	}

	return strings.Join(parts, " | ")
}

func formatDeliveryAddress(a DeliveryAddressInput) string {
	fields := []string{a.Street, a.Barangay, a.City, a.Province, a.PostalCode}
	nonEmpty := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(f))
		}
	}

	s := strings.Join(nonEmpty, ", ")
	if a.FullName != "" {
		s = a.FullName + " | " + s
	}
	if a.Phone != "" {
		s = s + " | Tel: " + a.Phone
	}
	if a.Notes != "" {
		s = s + " | Notes: " + a.Notes
	}
	return s
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	if userID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var orders []model.Order
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, total, err = r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// スタッフは自分宛の注文だけ、adminは全部
func (u *OrderUsecase) ListAllOrders(ctx context.Context, p Principal, page int, limit int, status string) ([]model.Order, int64, error) {
	if !p.CanManageInventory() {
		return nil, 0, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	f := repo.OrderListFilter{Page: page, Limit: limit, Status: status}
	if !p.IsAdmin() {
		f.StaffID = &p.ID
	}

	var orders []model.Order
	var total int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		orders, total, err = r.Orders().ListAll(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

var validOrderStatuses = map[model.OrderStatus]struct{}{
	model.OrderStatusPending:   {},
	model.OrderStatusToShip:    {},
	model.OrderStatusProcess:   {},
	model.OrderStatusToDeliver: {},
	model.OrderStatusShipped:   {},
	model.OrderStatusDelivered: {},
	model.OrderStatusCompleted: {},
	model.OrderStatusCancelled: {},
}

// 注文ステータスの更新。スタッフは担当注文しか触れない。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, p Principal, orderID int64, status model.OrderStatus) error {
	if !p.CanManageInventory() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if _, ok := validOrderStatuses[status]; !ok {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var staffID *int64
	if !p.IsAdmin() {
		staffID = &p.ID
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().UpdateStatus(ctx, orderID, status, staffID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found or not authorized")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

type ShipOrderInput struct {
	CourierName string
	TrackingNo  string
}

// 出荷処理。配送業者と追跡番号は必須。
func (u *OrderUsecase) Ship(ctx context.Context, p Principal, orderID int64, in ShipOrderInput) error {
	if !p.CanManageInventory() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.CourierName) == "" || strings.TrimSpace(in.TrackingNo) == "" {
		return NewHTTPError(http.StatusBadRequest, "courier name and tracking number are required")
	}

	var staffID *int64
	if !p.IsAdmin() {
		staffID = &p.ID
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().Ship(ctx, orderID, repo.ShipInfo{
			CourierName: strings.TrimSpace(in.CourierName),
			TrackingNo:  strings.TrimSpace(in.TrackingNo),
			ShippedDate: time.Now(),
		}, staffID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found or not authorized")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

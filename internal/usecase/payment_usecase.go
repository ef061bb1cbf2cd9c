package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cocolytics/internal/domain/model"
	repo "cocolytics/internal/repository"

	"github.com/shopspring/decimal"
)

type PaymentUsecase struct {
	tx      repo.TransactionManager
	gateway PaymentGateway
}

func NewPaymentUsecase(tx repo.TransactionManager, gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, gateway: gateway}
}

// HandleWebhookEvent はPayMongoからのイベントを処理する。
// 未知のイベントや見覚えのない決済IDは黙って無視する（リトライさせない）。
func (u *PaymentUsecase) HandleWebhookEvent(ctx context.Context, eventType, providerPaymentID string) error {
	if providerPaymentID == "" {
		return nil
	}

	switch eventType {
	case "payment.paid":
		now := time.Now()
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			payment, err := r.Payments().FindByProviderID(ctx, providerPaymentID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.Payments().MarkPaid(ctx, providerPaymentID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//注文側の支払いステータスも揃える
			err = r.Orders().UpdatePaymentStatus(ctx, payment.OrderID, model.PaymentStatusPaid, &now)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return nil
		})

	case "payment.failed":
		now := time.Now()
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			payment, err := r.Payments().FindByProviderID(ctx, providerPaymentID)
			if errors.Is(err, repo.ErrNotFound) {
				return nil
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.Payments().MarkFailed(ctx, providerPaymentID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			err = r.Orders().UpdatePaymentStatus(ctx, payment.OrderID, model.PaymentStatusFailed, nil)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			return nil
		})

	default:
		return nil
	}
}

type ConfirmPaymentInput struct {
	OrderID     int64
	SourceID    string
	Amount      decimal.Decimal
	Description string
}

type ConfirmPaymentOutput struct {
	PaymentID  int64  `json:"payment_id"`
	ProviderID string `json:"paymongo_payment_id"`
	Status     string `json:"status"`
}

// ConfirmPayment は承認済みソースから支払いを確定させる。
// 自分の注文でなければ404を返す（他人の注文の存在は教えない）。
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, userID int64, in ConfirmPaymentInput) (ConfirmPaymentOutput, error) {
	if userID <= 0 {
		return ConfirmPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.OrderID <= 0 || in.SourceID == "" {
		return ConfirmPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "order id and source id are required")
	}
	if !in.Amount.IsPositive() {
		return ConfirmPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	var order model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, in.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		order = o
		return nil
	})
	if err != nil {
		return ConfirmPaymentOutput{}, err
	}

	centavos := in.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	charge, err := u.gateway.CreatePayment(ctx, in.SourceID, centavos, in.Description)
	if err != nil {
		return ConfirmPaymentOutput{}, &PaymentProviderError{Err: err}
	}

	var paymentID int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Payments().Create(ctx, model.Payment{
			OrderID:           order.ID,
			UserID:            userID,
			PaymongoPaymentID: charge.ID,
			Amount:            in.Amount,
			Status:            charge.Status,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		paymentID = id

		if charge.Status == "paid" {
			now := time.Now()
			if err := r.Payments().MarkPaid(ctx, charge.ID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			err := r.Orders().UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusPaid, &now)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
	if err != nil {
		return ConfirmPaymentOutput{}, err
	}

	return ConfirmPaymentOutput{
		PaymentID:  paymentID,
		ProviderID: charge.ID,
		Status:     charge.Status,
	}, nil
}

package repository

import (
	"context"
	"time"

	"cocolytics/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (int64, error)
	FindByProviderID(ctx context.Context, providerPaymentID string) (model.Payment, error)
	MarkPaid(ctx context.Context, providerPaymentID string, paidAt time.Time) error
	MarkFailed(ctx context.Context, providerPaymentID string, failedAt time.Time) error
}

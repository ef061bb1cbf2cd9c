package repository

import (
	"context"
	"errors"
	"time"

	"cocolytics/internal/domain/model"
	repo "cocolytics/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *PaymentGormRepository) FindByProviderID(ctx context.Context, providerPaymentID string) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("paymongo_payment_id = ?", providerPaymentID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) MarkPaid(ctx context.Context, providerPaymentID string, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("paymongo_payment_id = ?", providerPaymentID).
		Updates(map[string]interface{}{
			"status":  "paid",
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PaymentGormRepository) MarkFailed(ctx context.Context, providerPaymentID string, failedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("paymongo_payment_id = ?", providerPaymentID).
		Updates(map[string]interface{}{
			"status":    "failed",
			"failed_at": failedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

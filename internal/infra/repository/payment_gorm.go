package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/payments"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) GetByBookingID(
	ctx context.Context,
	bookingID uint,
) (*models.PaymentRecord, error) {

	var rec models.PaymentRecord
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&rec).Error; err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *PaymentGormRepository) Create(
	ctx context.Context,
	rec *models.PaymentRecord,
) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *PaymentGormRepository) Update(
	ctx context.Context,
	rec *models.PaymentRecord,
) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Compile-time check
var _ payments.Repo = (*PaymentGormRepository)(nil)

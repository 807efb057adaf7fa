package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trainhub/session-booking/internal/models"
	"github.com/trainhub/session-booking/internal/provisioning"
)

type ProvisionedGormRepository struct {
	db *gorm.DB
}

func NewProvisionedGormRepository(db *gorm.DB) *ProvisionedGormRepository {
	return &ProvisionedGormRepository{db: db}
}

func (r *ProvisionedGormRepository) GetByBookingID(
	ctx context.Context,
	bookingID uint,
) (*models.ProvisionedResource, error) {

	var res models.ProvisionedResource
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&res).Error; err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *ProvisionedGormRepository) Save(
	ctx context.Context,
	res *models.ProvisionedResource,
) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *ProvisionedGormRepository) Delete(
	ctx context.Context,
	bookingID uint,
) error {
	return r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Delete(&models.ProvisionedResource{}).Error
}

// Compile-time check
var _ provisioning.Repo = (*ProvisionedGormRepository)(nil)

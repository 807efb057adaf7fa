package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/trainhub/session-booking/internal/domain/booking"
	"github.com/trainhub/session-booking/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) GetUserByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Compile-time check
var _ domain.UserReader = (*UserGormRepository)(nil)

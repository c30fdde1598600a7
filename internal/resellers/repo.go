package resellers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
)

// Repository defines persistence operations for resellers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a resellers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reseller, error) {
	var reseller models.Reseller
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&reseller).Error
	if err != nil {
		return nil, err
	}
	return &reseller, nil
}

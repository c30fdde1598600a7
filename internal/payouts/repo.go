package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
	"github.com/carplusapp/carplus-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payouts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.Payout) (*models.Payout, error) {
	if err := r.db.WithContext(ctx).Create(payout).Error; err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.PayoutItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Payout, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Payout{})
	if params.ResellerID != nil {
		query = query.Where("reseller_id = ?", *params.ResellerID)
	}
	if params.Status != nil {
		query = query.Where("transfer_status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var payouts []models.Payout
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&payouts).Error; err != nil {
		return nil, nil, err
	}

	if len(payouts) > limit {
		next := payouts[limit]
		payouts = payouts[:limit]
		return payouts, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return payouts, nil, nil
}

func (r *repository) ListUnsettled(ctx context.Context, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	query := r.db.WithContext(ctx).
		Where("transfer_status IN ?", []enums.TransferStatus{
			enums.TransferStatusPending,
			enums.TransferStatusBankProcessing,
		}).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) UpdateTransferStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus, settledAt *time.Time) error {
	updates := map[string]any{"transfer_status": status}
	if settledAt != nil {
		updates["settled_at"] = *settledAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ?", id).
		Updates(updates).Error
}

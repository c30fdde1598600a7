package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) eligible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Where("fulfillment_status IN ?", enums.PayoutEligibleFulfillmentStatuses).
		Where("payout_status = ?", enums.PayoutStatusPending)
}

func (r *repository) ListEligible(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.eligible(ctx).
		Where("reseller_id = ?", resellerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindEligibleByIDs(ctx context.Context, resellerID uuid.UUID, orderIDs []uuid.UUID) ([]models.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var orders []models.Order
	err := r.eligible(ctx).
		Where("reseller_id = ?", resellerID).
		Where("id IN ?", orderIDs).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaidOut flips the payout status of the given orders in one conditional
// update. The pending guard makes the flip race-safe: rows claimed by a
// concurrent payout are not touched, and the caller must compare the returned
// count against the expected one.
func (r *repository) MarkPaidOut(ctx context.Context, resellerID, payoutID uuid.UUID, orderIDs []uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Where("reseller_id = ?", resellerID).
		Where("payout_status = ?", enums.PayoutStatusPending).
		Updates(map[string]any{
			"payout_status": enums.PayoutStatusPaid,
			"payout_id":     payoutID,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindClaimedIDs returns the subset of orderIDs already claimed by a payout
// other than payoutID. Runs inside the execution transaction after a
// MarkPaidOut count mismatch to name the rows lost to a concurrent payout.
func (r *repository) FindClaimedIDs(ctx context.Context, orderIDs []uuid.UUID, payoutID uuid.UUID) ([]uuid.UUID, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Where("payout_status <> ?", enums.PayoutStatusPending).
		Where("payout_id IS NULL OR payout_id <> ?", payoutID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// pendingSummaryRow keeps the MIN() timestamp as text: the aggregate strips
// the column type, so the driver hands it back as a string rather than a
// time.Time.
type pendingSummaryRow struct {
	ResellerID   uuid.UUID
	ResellerName string
	OrderCount   int
	GrossTotal   decimal.Decimal
	OldestAt     string
}

func (r *repository) PendingSummaries(ctx context.Context) ([]PendingSummary, error) {
	var rows []pendingSummaryRow
	err := r.eligible(ctx).
		Model(&models.Order{}).
		Select(
			"orders.reseller_id AS reseller_id",
			"resellers.name AS reseller_name",
			"COUNT(orders.id) AS order_count",
			"SUM(orders.total) AS gross_total",
			"MIN(orders.created_at) AS oldest_at",
		).
		Joins("JOIN resellers ON resellers.id = orders.reseller_id").
		Group("orders.reseller_id, resellers.name").
		Order("gross_total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]PendingSummary, 0, len(rows))
	for _, row := range rows {
		oldest, err := parseScannedTime(row.OldestAt)
		if err != nil {
			return nil, fmt.Errorf("parse oldest_at: %w", err)
		}
		summaries = append(summaries, PendingSummary{
			ResellerID:   row.ResellerID,
			ResellerName: row.ResellerName,
			OrderCount:   row.OrderCount,
			GrossTotal:   row.GrossTotal,
			OldestAt:     oldest,
		})
	}
	return summaries, nil
}

func parseScannedTime(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

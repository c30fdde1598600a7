package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
)

// Repository defines persistence operations over the orders table that the
// payout flow needs. Eligibility is a single predicate used everywhere: paid,
// delivered or picked up, and payout still pending.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEligible(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error)
	FindEligibleByIDs(ctx context.Context, resellerID uuid.UUID, orderIDs []uuid.UUID) ([]models.Order, error)
	MarkPaidOut(ctx context.Context, resellerID, payoutID uuid.UUID, orderIDs []uuid.UUID) (int64, error)
	FindClaimedIDs(ctx context.Context, orderIDs []uuid.UUID, payoutID uuid.UUID) ([]uuid.UUID, error)
	PendingSummaries(ctx context.Context) ([]PendingSummary, error)
}

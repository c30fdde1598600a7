package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/asaas"
	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
	"github.com/carplusapp/carplus-backend/pkg/pagination"
)

// Repository defines persistence operations for the payout ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.Payout) (*models.Payout, error)
	CreateItems(ctx context.Context, items []models.PayoutItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	List(ctx context.Context, params ListQuery) ([]models.Payout, *pagination.Cursor, error)
	ListUnsettled(ctx context.Context, limit int) ([]models.Payout, error)
	UpdateTransferStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus, settledAt *time.Time) error
}

// ListQuery holds the filters for the payout history list.
type ListQuery struct {
	ResellerID *uuid.UUID
	Status     *enums.TransferStatus
	Limit      int
	Cursor     *pagination.Cursor
}

// TransferGateway is the slice of the payment gateway the payout flow uses.
type TransferGateway interface {
	CreateTransfer(ctx context.Context, params asaas.TransferCreateParams) (*asaas.Transfer, error)
	GetTransfer(ctx context.Context, transferID string) (*asaas.Transfer, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

package payouts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
)

// ExecuteInput carries everything needed to run one payout. An empty OrderIDs
// slice means "pay out everything currently eligible".
type ExecuteInput struct {
	ResellerID   uuid.UUID
	OrderIDs     []uuid.UUID
	Description  string
	ScheduleDate string
}

// Receipt is returned to the caller after a successful payout.
type Receipt struct {
	PayoutID       uuid.UUID            `json:"payout_id"`
	ResellerID     uuid.UUID            `json:"reseller_id"`
	TransferID     string               `json:"transfer_id"`
	TransferStatus enums.TransferStatus `json:"transfer_status"`
	OrderCount     int                  `json:"order_count"`
	GrossTotal     decimal.Decimal      `json:"gross_total"`
	Rate           decimal.Decimal      `json:"rate"`
	NetAmount      decimal.Decimal      `json:"net_amount"`
	CreatedAt      time.Time            `json:"created_at"`
}

// PayoutSummary exposes the fields returned in the payout history list.
type PayoutSummary struct {
	ID             uuid.UUID            `json:"id"`
	ResellerID     uuid.UUID            `json:"reseller_id"`
	TransferID     string               `json:"transfer_id"`
	TransferStatus enums.TransferStatus `json:"transfer_status"`
	OrderCount     int                  `json:"order_count"`
	GrossTotal     decimal.Decimal      `json:"gross_total"`
	NetAmount      decimal.Decimal      `json:"net_amount"`
	SettledAt      *time.Time           `json:"settled_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// PayoutList wraps the paginated payouts plus the next page cursor.
type PayoutList struct {
	Payouts    []PayoutSummary `json:"payouts"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func summarize(payout models.Payout) PayoutSummary {
	return PayoutSummary{
		ID:             payout.ID,
		ResellerID:     payout.ResellerID,
		TransferID:     payout.TransferID,
		TransferStatus: payout.TransferStatus,
		OrderCount:     payout.OrderCount,
		GrossTotal:     payout.GrossTotal,
		NetAmount:      payout.NetAmount,
		SettledAt:      payout.SettledAt,
		CreatedAt:      payout.CreatedAt,
	}
}

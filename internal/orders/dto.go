package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingSummary aggregates the payout backlog for one reseller.
type PendingSummary struct {
	ResellerID   uuid.UUID       `json:"reseller_id"`
	ResellerName string          `json:"reseller_name"`
	OrderCount   int             `json:"order_count"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
	OldestAt     time.Time       `json:"oldest_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/enums"
)

// Payout is the ledger header for one executed transfer to a reseller. It is
// only ever written together with its items and the payout-status flip of the
// orders it covers, inside a single transaction.
type Payout struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ResellerID     uuid.UUID            `gorm:"column:reseller_id;type:uuid;not null;index"`
	GrossTotal     decimal.Decimal      `gorm:"column:gross_total;type:numeric(12,2);not null"`
	Rate           decimal.Decimal      `gorm:"column:rate;type:numeric(5,4);not null"`
	NetAmount      decimal.Decimal      `gorm:"column:net_amount;type:numeric(12,2);not null"`
	OrderCount     int                  `gorm:"column:order_count;not null"`
	Method         enums.PayoutMethod   `gorm:"column:method;type:text;not null;default:'PIX'"`
	TransferID     string               `gorm:"column:transfer_id;not null;unique"`
	TransferStatus enums.TransferStatus `gorm:"column:transfer_status;type:text;not null;default:'PENDING'"`
	Description    string               `gorm:"column:description;not null"`
	SettledAt      *time.Time           `gorm:"column:settled_at"`
	Items          []PayoutItem         `gorm:"foreignKey:PayoutID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

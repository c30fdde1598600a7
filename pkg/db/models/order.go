package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/enums"
)

// Order is a customer purchase attributed to a reseller. An order becomes
// payout-eligible once it is paid, delivered or picked up, and still pending
// payout. PayoutStatus flips to paid exactly once, inside the payout
// transaction, never anywhere else.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ResellerID        uuid.UUID               `gorm:"column:reseller_id;type:uuid;not null;index"`
	CustomerName      string                  `gorm:"column:customer_name;not null"`
	Total             decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'pending'"`
	PayoutStatus      enums.PayoutStatus      `gorm:"column:payout_status;type:text;not null;default:'pending';index"`
	PayoutID          *uuid.UUID              `gorm:"column:payout_id;type:uuid"`
	DeliveredAt       *time.Time              `gorm:"column:delivered_at"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

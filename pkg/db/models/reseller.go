package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/enums"
)

// Reseller is a marketplace seller who receives PIX payouts for fulfilled
// orders. The PIX key and its type are the transfer destination; both are
// required before any payout can run.
type Reseller struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string               `gorm:"column:name;not null"`
	Email      string               `gorm:"column:email;not null;unique"`
	Document   string               `gorm:"column:document;not null"`
	PixKey     string               `gorm:"column:pix_key;not null"`
	PixKeyType enums.PixKeyType     `gorm:"column:pix_key_type;type:text;not null"`
	PayoutRate decimal.NullDecimal  `gorm:"column:payout_rate;type:numeric(5,4)"`
	Status     enums.ResellerStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Orders     []Order              `gorm:"foreignKey:ResellerID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

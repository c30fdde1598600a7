package payouts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
)

// Aggregation is the money math result for one payout batch.
type Aggregation struct {
	OrderIDs   []uuid.UUID
	GrossTotal decimal.Decimal
	Rate       decimal.Decimal
	NetAmount  decimal.Decimal
	Items      []models.PayoutItem
}

// Aggregate sums the batch and applies the payout rate. Totals stay in
// decimal the whole way; the net amount is rounded to centavos exactly once,
// at the end.
func Aggregate(orders []models.Order, rate decimal.Decimal) (*Aggregation, error) {
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no orders to aggregate")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout rate must be between 0 and 1")
	}

	gross := decimal.Zero
	orderIDs := make([]uuid.UUID, 0, len(orders))
	items := make([]models.PayoutItem, 0, len(orders))
	for _, order := range orders {
		if !order.Total.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive").
				WithDetails(map[string]any{"order_id": order.ID})
		}
		gross = gross.Add(order.Total)
		orderIDs = append(orderIDs, order.ID)
		items = append(items, models.PayoutItem{
			ID:      uuid.New(),
			OrderID: order.ID,
			Amount:  order.Total,
		})
	}

	net := gross.Mul(rate).Round(2)
	if !net.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "net payout amount must be positive")
	}

	return &Aggregation{
		OrderIDs:   orderIDs,
		GrossTotal: gross,
		Rate:       rate,
		NetAmount:  net,
		Items:      items,
	}, nil
}

package payouts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
)

func orderWithTotal(total string) models.Order {
	return models.Order{ID: uuid.New(), Total: decimal.RequireFromString(total)}
}

func TestAggregateSumsAndAppliesRate(t *testing.T) {
	batch := []models.Order{
		orderWithTotal("100.10"),
		orderWithTotal("200.20"),
		orderWithTotal("0.01"),
	}

	agg, err := Aggregate(batch, decimal.RequireFromString("1.0"))
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if !agg.GrossTotal.Equal(decimal.RequireFromString("300.31")) {
		t.Fatalf("unexpected gross total %s", agg.GrossTotal)
	}
	if !agg.NetAmount.Equal(agg.GrossTotal) {
		t.Fatalf("rate 1.0 must keep net equal to gross, got %s", agg.NetAmount)
	}
	if len(agg.Items) != 3 || len(agg.OrderIDs) != 3 {
		t.Fatalf("expected one item per order, got %d items %d ids", len(agg.Items), len(agg.OrderIDs))
	}
	for i, item := range agg.Items {
		if item.OrderID != batch[i].ID {
			t.Fatalf("item %d bound to wrong order", i)
		}
		if !item.Amount.Equal(batch[i].Total) {
			t.Fatalf("item %d amount %s != order total %s", i, item.Amount, batch[i].Total)
		}
	}
}

func TestAggregateRoundsNetOnce(t *testing.T) {
	// 0.85 * 33.33 = 28.3305 -> 28.33; summing first avoids per-order
	// rounding drift.
	batch := []models.Order{
		orderWithTotal("11.11"),
		orderWithTotal("11.11"),
		orderWithTotal("11.11"),
	}

	agg, err := Aggregate(batch, decimal.RequireFromString("0.85"))
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if !agg.GrossTotal.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("unexpected gross %s", agg.GrossTotal)
	}
	if !agg.NetAmount.Equal(decimal.RequireFromString("28.33")) {
		t.Fatalf("unexpected net %s", agg.NetAmount)
	}
}

func TestAggregateValidation(t *testing.T) {
	one := decimal.NewFromInt(1)

	if _, err := Aggregate(nil, one); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("empty batch should fail validation, got %v", err)
	}

	if _, err := Aggregate([]models.Order{orderWithTotal("10.00")}, decimal.RequireFromString("1.5")); err == nil {
		t.Fatal("rate above 1 should fail")
	}
	if _, err := Aggregate([]models.Order{orderWithTotal("10.00")}, decimal.RequireFromString("-0.1")); err == nil {
		t.Fatal("negative rate should fail")
	}

	if _, err := Aggregate([]models.Order{orderWithTotal("0.00")}, one); err == nil {
		t.Fatal("zero order total should fail")
	}

	if _, err := Aggregate([]models.Order{orderWithTotal("10.00")}, decimal.Zero); err == nil {
		t.Fatal("zero net amount should fail")
	}
}

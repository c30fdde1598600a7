package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	resellers := `
CREATE TABLE IF NOT EXISTS resellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  document TEXT NOT NULL,
  pix_key TEXT NOT NULL,
  pix_key_type TEXT NOT NULL,
  payout_rate NUMERIC,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  reseller_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  total NUMERIC NOT NULL,
  payment_status TEXT NOT NULL,
  fulfillment_status TEXT NOT NULL,
  payout_status TEXT NOT NULL,
  payout_id TEXT,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(resellers).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	require.NoError(t, db.Exec(`DELETE FROM resellers`).Error)
	return db
}

func newReseller(t *testing.T, db *gorm.DB, name string) *models.Reseller {
	t.Helper()

	reseller := &models.Reseller{
		ID:         uuid.New(),
		Name:       name,
		Email:      name + "@carplus.test",
		Document:   "12345678900",
		PixKey:     "11999990000",
		PixKeyType: enums.PixKeyTypePhone,
		Status:     enums.ResellerStatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(reseller).Error)
	return reseller
}

type orderSeed struct {
	total       string
	payment     enums.PaymentStatus
	fulfillment enums.FulfillmentStatus
	payout      enums.PayoutStatus
	createdAt   time.Time
}

func newOrder(t *testing.T, db *gorm.DB, resellerID uuid.UUID, seed orderSeed) *models.Order {
	t.Helper()

	if seed.createdAt.IsZero() {
		seed.createdAt = time.Now().UTC()
	}
	order := &models.Order{
		ID:                uuid.New(),
		ResellerID:        resellerID,
		CustomerName:      "Cliente Teste",
		Total:             decimal.RequireFromString(seed.total),
		PaymentStatus:     seed.payment,
		FulfillmentStatus: seed.fulfillment,
		PayoutStatus:      seed.payout,
		CreatedAt:         seed.createdAt,
		UpdatedAt:         seed.createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestListEligibleFiltersAndOrdering(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := newReseller(t, db, "garagem-sul")
	other := newReseller(t, db, "garagem-norte")

	base := time.Now().UTC().Add(-time.Hour)
	older := newOrder(t, db, reseller.ID, orderSeed{
		total: "100.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
		createdAt: base,
	})
	newer := newOrder(t, db, reseller.ID, orderSeed{
		total: "250.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusPickedUp, payout: enums.PayoutStatusPending,
		createdAt: base.Add(10 * time.Minute),
	})

	// None of these may show up: wrong payment, wrong fulfillment, already
	// paid out, or belonging to another reseller.
	newOrder(t, db, reseller.ID, orderSeed{
		total: "10.00", payment: enums.PaymentStatusUnpaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})
	newOrder(t, db, reseller.ID, orderSeed{
		total: "10.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusInTransit, payout: enums.PayoutStatusPending,
	})
	newOrder(t, db, reseller.ID, orderSeed{
		total: "10.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})
	newOrder(t, db, other.ID, orderSeed{
		total: "10.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})

	eligible, err := repo.ListEligible(ctx, reseller.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, newer.ID, eligible[0].ID, "newest first")
	assert.Equal(t, older.ID, eligible[1].ID)
}

func TestFindEligibleByIDs(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := newReseller(t, db, "garagem-leste")
	eligible := newOrder(t, db, reseller.ID, orderSeed{
		total: "300.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})
	claimed := newOrder(t, db, reseller.ID, orderSeed{
		total: "300.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})

	found, err := repo.FindEligibleByIDs(ctx, reseller.ID, []uuid.UUID{eligible.ID, claimed.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, eligible.ID, found[0].ID)

	found, err = repo.FindEligibleByIDs(ctx, reseller.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMarkPaidOutOnlyFlipsPendingRows(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := newReseller(t, db, "garagem-oeste")
	pending := newOrder(t, db, reseller.ID, orderSeed{
		total: "120.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})
	alreadyPaid := newOrder(t, db, reseller.ID, orderSeed{
		total: "120.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})

	payoutID := uuid.New()
	affected, err := repo.MarkPaidOut(ctx, reseller.ID, payoutID, []uuid.UUID{pending.ID, alreadyPaid.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected, "claimed row must not be flipped twice")

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", pending.ID).Error)
	assert.Equal(t, enums.PayoutStatusPaid, reloaded.PayoutStatus)
	require.NotNil(t, reloaded.PayoutID)
	assert.Equal(t, payoutID, *reloaded.PayoutID)
}

func TestFindClaimedIDsNamesRowsLostToOtherPayouts(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := newReseller(t, db, "garagem-centro")
	ourPayout := uuid.New()
	otherPayout := uuid.New()

	ours := newOrder(t, db, reseller.ID, orderSeed{
		total: "50.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})
	stolen := newOrder(t, db, reseller.ID, orderSeed{
		total: "60.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})
	pending := newOrder(t, db, reseller.ID, orderSeed{
		total: "70.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", ours.ID).Update("payout_id", ourPayout).Error)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", stolen.ID).Update("payout_id", otherPayout).Error)

	claimed, err := repo.FindClaimedIDs(ctx, []uuid.UUID{ours.ID, stolen.ID, pending.ID}, ourPayout)
	require.NoError(t, err)
	require.Len(t, claimed, 1, "only the row claimed by the concurrent payout")
	assert.Equal(t, stolen.ID, claimed[0])

	claimed, err = repo.FindClaimedIDs(ctx, nil, ourPayout)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestPendingSummaries(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alpha := newReseller(t, db, "garagem-alpha")
	beta := newReseller(t, db, "garagem-beta")

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newOrder(t, db, alpha.ID, orderSeed{
		total: "100.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
		createdAt: base,
	})
	newOrder(t, db, alpha.ID, orderSeed{
		total: "150.50", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusPickedUp, payout: enums.PayoutStatusPending,
		createdAt: base.Add(10 * time.Minute),
	})
	newOrder(t, db, beta.ID, orderSeed{
		total: "80.00", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPending,
	})
	newOrder(t, db, beta.ID, orderSeed{
		total: "999.99", payment: enums.PaymentStatusPaid,
		fulfillment: enums.FulfillmentStatusDelivered, payout: enums.PayoutStatusPaid,
	})

	summaries, err := repo.PendingSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, alpha.ID, summaries[0].ResellerID, "largest backlog first")
	assert.Equal(t, "garagem-alpha", summaries[0].ResellerName)
	assert.Equal(t, 2, summaries[0].OrderCount)
	assert.True(t, summaries[0].GrossTotal.Equal(decimal.RequireFromString("250.50")),
		"got %s", summaries[0].GrossTotal)
	assert.WithinDuration(t, base, summaries[0].OldestAt, time.Second,
		"oldest_at must survive the aggregate round trip")

	assert.Equal(t, beta.ID, summaries[1].ResellerID)
	assert.Equal(t, 1, summaries[1].OrderCount)
	assert.True(t, summaries[1].GrossTotal.Equal(decimal.RequireFromString("80.00")))
}

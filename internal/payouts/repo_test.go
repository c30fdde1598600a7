package payouts

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

func setupPayoutsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	payouts := `
CREATE TABLE IF NOT EXISTS payouts (
  id TEXT PRIMARY KEY,
  reseller_id TEXT NOT NULL,
  gross_total NUMERIC NOT NULL,
  rate NUMERIC NOT NULL,
  net_amount NUMERIC NOT NULL,
  order_count INTEGER NOT NULL,
  method TEXT NOT NULL,
  transfer_id TEXT NOT NULL UNIQUE,
  transfer_status TEXT NOT NULL,
  description TEXT NOT NULL,
  settled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	payoutItems := `
CREATE TABLE IF NOT EXISTS payout_items (
  id TEXT PRIMARY KEY,
  payout_id TEXT NOT NULL,
  order_id TEXT NOT NULL UNIQUE,
  amount NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(payouts).Error)
	require.NoError(t, db.Exec(payoutItems).Error)
	require.NoError(t, db.Exec(`DELETE FROM payout_items`).Error)
	require.NoError(t, db.Exec(`DELETE FROM payouts`).Error)
	return db
}

func seedPayout(t *testing.T, db *gorm.DB, resellerID uuid.UUID, status enums.TransferStatus, createdAt time.Time) *models.Payout {
	t.Helper()

	payout := &models.Payout{
		ID:             uuid.New(),
		ResellerID:     resellerID,
		GrossTotal:     decimal.RequireFromString("100.00"),
		Rate:           decimal.RequireFromString("1.0"),
		NetAmount:      decimal.RequireFromString("100.00"),
		OrderCount:     1,
		Method:         enums.PayoutMethodPIX,
		TransferID:     "tra_" + uuid.NewString(),
		TransferStatus: status,
		Description:    "Repasse Car+ teste",
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, db.Create(payout).Error)
	return payout
}

func TestCreateAndFindPayoutWithItems(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payout := &models.Payout{
		ID:             uuid.New(),
		ResellerID:     uuid.New(),
		GrossTotal:     decimal.RequireFromString("350.50"),
		Rate:           decimal.RequireFromString("1.0"),
		NetAmount:      decimal.RequireFromString("350.50"),
		OrderCount:     2,
		Method:         enums.PayoutMethodPIX,
		TransferID:     "tra_find_me",
		TransferStatus: enums.TransferStatusPending,
		Description:    "Repasse Car+",
	}
	_, err := repo.Create(ctx, payout)
	require.NoError(t, err)

	items := []models.PayoutItem{
		{ID: uuid.New(), PayoutID: payout.ID, OrderID: uuid.New(), Amount: decimal.RequireFromString("100.00")},
		{ID: uuid.New(), PayoutID: payout.ID, OrderID: uuid.New(), Amount: decimal.RequireFromString("250.50")},
	}
	require.NoError(t, repo.CreateItems(ctx, items))

	found, err := repo.FindByID(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, "tra_find_me", found.TransferID)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.GrossTotal.Equal(decimal.RequireFromString("350.50")))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListPayoutsFiltersAndPaginates(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := uuid.New()
	other := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	first := seedPayout(t, db, reseller, enums.TransferStatusDone, base.Add(3*time.Minute))
	second := seedPayout(t, db, reseller, enums.TransferStatusPending, base.Add(2*time.Minute))
	third := seedPayout(t, db, reseller, enums.TransferStatusDone, base.Add(time.Minute))
	seedPayout(t, db, other, enums.TransferStatusDone, base)

	listed, next, err := repo.List(ctx, ListQuery{ResellerID: &reseller, Limit: 2})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID, "newest first")
	assert.Equal(t, second.ID, listed[1].ID)
	require.NotNil(t, next, "a third page entry exists")

	listed, next, err = repo.List(ctx, ListQuery{ResellerID: &reseller, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, third.ID, listed[0].ID)
	assert.Nil(t, next)

	done := enums.TransferStatusDone
	listed, _, err = repo.List(ctx, ListQuery{ResellerID: &reseller, Status: &done, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestListUnsettledAndStatusUpdate(t *testing.T) {
	db := setupPayoutsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reseller := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	pending := seedPayout(t, db, reseller, enums.TransferStatusPending, base)
	processing := seedPayout(t, db, reseller, enums.TransferStatusBankProcessing, base.Add(time.Minute))
	seedPayout(t, db, reseller, enums.TransferStatusDone, base.Add(2*time.Minute))
	seedPayout(t, db, reseller, enums.TransferStatusFailed, base.Add(3*time.Minute))

	unsettled, err := repo.ListUnsettled(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsettled, 2)
	assert.Equal(t, pending.ID, unsettled[0].ID, "oldest first")
	assert.Equal(t, processing.ID, unsettled[1].ID)

	settledAt := time.Now().UTC()
	require.NoError(t, repo.UpdateTransferStatus(ctx, pending.ID, enums.TransferStatusDone, &settledAt))

	reloaded, err := repo.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransferStatusDone, reloaded.TransferStatus)
	require.NotNil(t, reloaded.SettledAt)
}

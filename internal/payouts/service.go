package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/carplusapp/carplus-backend/internal/orders"
	"github.com/carplusapp/carplus-backend/internal/resellers"
	"github.com/carplusapp/carplus-backend/pkg/asaas"
	"github.com/carplusapp/carplus-backend/pkg/db/models"
	"github.com/carplusapp/carplus-backend/pkg/enums"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
	"github.com/carplusapp/carplus-backend/pkg/logger"
	"github.com/carplusapp/carplus-backend/pkg/pagination"
)

// ListFilters describe the inputs supported by the payout history list.
type ListFilters struct {
	ResellerID *uuid.UUID
	Status     *enums.TransferStatus
}

// Service orchestrates payout execution, history, and reconciliation.
type Service interface {
	EligibleOrders(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error)
	PendingSummaries(ctx context.Context) ([]orders.PendingSummary, error)
	Execute(ctx context.Context, input ExecuteInput) (*Receipt, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PayoutList, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	Reconcile(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ReconcileUnsettled(ctx context.Context, batchSize int) (int, error)
}

type service struct {
	orders      orders.Repository
	resellers   resellers.Repository
	payouts     Repository
	gateway     TransferGateway
	tx          txRunner
	locks       *resellerLocks
	defaultRate decimal.Decimal
	logg        *logger.Logger
}

// NewService builds a payout service with the required dependencies.
func NewService(
	ordersRepo orders.Repository,
	resellersRepo resellers.Repository,
	payoutsRepo Repository,
	gateway TransferGateway,
	tx txRunner,
	defaultRate decimal.Decimal,
	logg *logger.Logger,
) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if resellersRepo == nil {
		return nil, fmt.Errorf("resellers repository required")
	}
	if payoutsRepo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("transfer gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if defaultRate.IsNegative() || defaultRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("default payout rate must be between 0 and 1")
	}
	return &service{
		orders:      ordersRepo,
		resellers:   resellersRepo,
		payouts:     payoutsRepo,
		gateway:     gateway,
		tx:          tx,
		locks:       newResellerLocks(),
		defaultRate: defaultRate,
		logg:        logg,
	}, nil
}

func (s *service) EligibleOrders(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error) {
	if resellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller id required")
	}
	if _, err := s.loadReseller(ctx, resellerID); err != nil {
		return nil, err
	}
	eligible, err := s.orders.ListEligible(ctx, resellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligible orders")
	}
	return eligible, nil
}

func (s *service) PendingSummaries(ctx context.Context) ([]orders.PendingSummary, error) {
	summaries, err := s.orders.PendingSummaries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending payout summaries")
	}
	return summaries, nil
}

// Execute runs the full payout flow for one reseller: select, aggregate,
// transfer, record. The gateway call happens outside the ledger transaction,
// so any failure after the transfer is reported with the transfer id and
// never retried automatically.
func (s *service) Execute(ctx context.Context, input ExecuteInput) (*Receipt, error) {
	if input.ResellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller id required")
	}

	release := s.locks.Acquire(input.ResellerID)
	defer release()

	ctx = s.logg.WithResellerID(ctx, input.ResellerID.String())

	reseller, err := s.loadReseller(ctx, input.ResellerID)
	if err != nil {
		return nil, err
	}
	if reseller.Status != enums.ResellerStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reseller is not active")
	}
	if reseller.PixKey == "" || !reseller.PixKeyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller has no valid pix key")
	}

	batch, err := s.selectBatch(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reseller has no eligible orders")
	}

	rate := s.defaultRate
	if reseller.PayoutRate.Valid {
		rate = reseller.PayoutRate.Decimal
	}
	agg, err := Aggregate(batch, rate)
	if err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Repasse Car+ %s", reseller.Name)
	}

	transfer, err := s.gateway.CreateTransfer(ctx, asaas.TransferCreateParams{
		Value:             agg.NetAmount,
		PixAddressKey:     reseller.PixKey,
		PixAddressKeyType: reseller.PixKeyType,
		Description:       description,
		ScheduleDate:      input.ScheduleDate,
	})
	if err != nil {
		return nil, err
	}

	transferStatus := transfer.Status
	if !transferStatus.IsValid() {
		transferStatus = enums.TransferStatusPending
	}
	payout := &models.Payout{
		ID:             uuid.New(),
		ResellerID:     reseller.ID,
		GrossTotal:     agg.GrossTotal,
		Rate:           agg.Rate,
		NetAmount:      agg.NetAmount,
		OrderCount:     len(agg.OrderIDs),
		Method:         enums.PayoutMethodPIX,
		TransferID:     transfer.ID,
		TransferStatus: transferStatus,
		Description:    description,
	}

	ctx = s.logg.WithPayoutID(ctx, payout.ID.String())

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.payouts.WithTx(tx)
		if _, err := ledger.Create(ctx, payout); err != nil {
			return s.partialFailure(ctx, transfer.ID, "create_payout", err)
		}

		items := agg.Items
		for i := range items {
			items[i].PayoutID = payout.ID
		}
		if err := ledger.CreateItems(ctx, items); err != nil {
			return s.partialFailure(ctx, transfer.ID, "create_payout_items", err)
		}

		affected, err := s.orders.WithTx(tx).MarkPaidOut(ctx, reseller.ID, payout.ID, agg.OrderIDs)
		if err != nil {
			return s.partialFailure(ctx, transfer.ID, "mark_orders_paid", err)
		}
		if affected != int64(len(agg.OrderIDs)) {
			s.logg.Error(ctx, "payout order set changed mid-flight, rolling back ledger",
				fmt.Errorf("expected %d rows, flipped %d", len(agg.OrderIDs), affected))
			details := map[string]any{
				"transfer_id":    transfer.ID,
				"expected_count": len(agg.OrderIDs),
				"flipped_count":  affected,
			}
			claimed, lookupErr := s.orders.WithTx(tx).FindClaimedIDs(ctx, agg.OrderIDs, payout.ID)
			if lookupErr != nil {
				s.logg.Error(ctx, "could not resolve which orders were claimed", lookupErr)
			}
			claimedIDs := make([]string, 0, len(claimed))
			for _, id := range claimed {
				claimedIDs = append(claimedIDs, id.String())
			}
			details["order_ids"] = claimedIDs
			return pkgerrors.New(pkgerrors.CodePayoutConflict, "eligible orders changed during payout").
				WithDetails(details)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transfer_id": transfer.ID,
		"order_count": payout.OrderCount,
		"net_amount":  payout.NetAmount.StringFixed(2),
	}), "payout executed")

	return &Receipt{
		PayoutID:       payout.ID,
		ResellerID:     payout.ResellerID,
		TransferID:     payout.TransferID,
		TransferStatus: payout.TransferStatus,
		OrderCount:     payout.OrderCount,
		GrossTotal:     payout.GrossTotal,
		Rate:           payout.Rate,
		NetAmount:      payout.NetAmount,
		CreatedAt:      payout.CreatedAt,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PayoutList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	payouts, next, err := s.payouts.List(ctx, ListQuery{
		ResellerID: filters.ResellerID,
		Status:     filters.Status,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}

	list := &PayoutList{Payouts: make([]PayoutSummary, 0, len(payouts))}
	for _, payout := range payouts {
		list.Payouts = append(list.Payouts, summarize(payout))
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}
	payout, err := s.payouts.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	return payout, nil
}

// Reconcile refreshes one payout's transfer status from the gateway.
func (s *service) Reconcile(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	payout, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if payout.TransferStatus.IsTerminal() {
		return payout, nil
	}

	transfer, err := s.gateway.GetTransfer(ctx, payout.TransferID)
	if err != nil {
		return nil, err
	}
	if !transfer.Status.IsValid() || transfer.Status == payout.TransferStatus {
		return payout, nil
	}

	var settledAt *time.Time
	if transfer.Status == enums.TransferStatusDone {
		now := time.Now().UTC()
		settledAt = &now
	}
	if err := s.payouts.UpdateTransferStatus(ctx, payout.ID, transfer.Status, settledAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transfer status")
	}

	payout.TransferStatus = transfer.Status
	payout.SettledAt = settledAt
	return payout, nil
}

// ReconcileUnsettled walks the non-terminal payouts and refreshes each one.
// It keeps going after individual failures and reports them together.
func (s *service) ReconcileUnsettled(ctx context.Context, batchSize int) (int, error) {
	unsettled, err := s.payouts.ListUnsettled(ctx, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unsettled payouts")
	}

	var errs error
	updated := 0
	for _, payout := range unsettled {
		before := payout.TransferStatus
		refreshed, err := s.Reconcile(ctx, payout.ID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("payout %s: %w", payout.ID, err))
			continue
		}
		if refreshed.TransferStatus != before {
			updated++
		}
	}
	return updated, errs
}

func (s *service) loadReseller(ctx context.Context, id uuid.UUID) (*models.Reseller, error) {
	reseller, err := s.resellers.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reseller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reseller")
	}
	return reseller, nil
}

func (s *service) selectBatch(ctx context.Context, input ExecuteInput) ([]models.Order, error) {
	if len(input.OrderIDs) == 0 {
		eligible, err := s.orders.ListEligible(ctx, input.ResellerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligible orders")
		}
		return eligible, nil
	}

	requested := dedupe(input.OrderIDs)
	batch, err := s.orders.FindEligibleByIDs(ctx, input.ResellerID, requested)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requested orders")
	}
	if len(batch) != len(requested) {
		missing := missingIDs(requested, batch)
		return nil, pkgerrors.New(pkgerrors.CodePayoutConflict, "requested orders are no longer eligible").
			WithDetails(map[string]any{"order_ids": missing})
	}
	return batch, nil
}

func (s *service) partialFailure(ctx context.Context, transferID, step string, err error) error {
	s.logg.Error(s.logg.WithFields(ctx, map[string]any{
		"transfer_id": transferID,
		"step":        step,
	}), "transfer sent but ledger write failed, manual reconciliation required", err)
	return pkgerrors.Wrap(pkgerrors.CodePayoutPartial, err, "payout ledger write failed").
		WithDetails(map[string]any{
			"transfer_id": transferID,
			"step":        step,
		})
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(requested []uuid.UUID, found []models.Order) []string {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, order := range found {
		present[order.ID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}

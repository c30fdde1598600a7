package cron

import (
	"context"
	"fmt"

	"github.com/carplusapp/carplus-backend/internal/payouts"
	"github.com/carplusapp/carplus-backend/pkg/logger"
)

const defaultReconcileBatch = 50

// TransferReconcileJobParams configures the payout transfer sync cron job.
type TransferReconcileJobParams struct {
	Logger    *logger.Logger
	Payouts   payouts.Service
	BatchSize int
}

// NewTransferReconcileJob builds the job that refreshes unsettled payout
// transfers against the gateway.
func NewTransferReconcileJob(params TransferReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payouts == nil {
		return nil, fmt.Errorf("payouts service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultReconcileBatch
	}
	return &transferReconcileJob{
		logg:      params.Logger,
		payouts:   params.Payouts,
		batchSize: batchSize,
	}, nil
}

type transferReconcileJob struct {
	logg      *logger.Logger
	payouts   payouts.Service
	batchSize int
}

func (j *transferReconcileJob) Name() string { return "transfer-reconcile" }

func (j *transferReconcileJob) Run(ctx context.Context) error {
	updated, err := j.payouts.ReconcileUnsettled(ctx, j.batchSize)
	reportCtx := j.logg.WithField(ctx, "updated", updated)
	if err != nil {
		j.logg.Warn(reportCtx, "transfer reconcile loop finished with failures")
		return fmt.Errorf("reconcile unsettled payouts: %w", err)
	}
	j.logg.Info(reportCtx, "transfer reconcile loop complete")
	return nil
}

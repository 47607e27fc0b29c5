package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const defaultHistoryBatchSize = 200

type discountHistorySyncer interface {
	Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	SyncByID(ctx context.Context, tx *gorm.DB, discountID uuid.UUID, now time.Time) (discounts.SyncResult, error)
}

// DiscountHistoryJobParams configure the discount history sync job.
type DiscountHistoryJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Syncer    discountHistorySyncer
	BatchSize int
}

// NewDiscountHistoryJob builds the job that closes history rows of discounts
// that stopped being live and opens rows for discounts that became live.
func NewDiscountHistoryJob(params DiscountHistoryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Syncer == nil {
		return nil, fmt.Errorf("history syncer required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultHistoryBatchSize
	}
	return &discountHistoryJob{
		logg:   params.Logger,
		db:     params.DB,
		syncer: params.Syncer,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type discountHistoryJob struct {
	logg   *logger.Logger
	db     txRunner
	syncer discountHistorySyncer
	batch  int
	now    func() time.Time
}

func (j *discountHistoryJob) Name() string { return "discount-history-sync" }

// Run syncs each due discount in its own transaction. A failing discount does
// not stop the batch; failures are combined into the returned error.
func (j *discountHistoryJob) Run(ctx context.Context) (Result, error) {
	now := j.now().UTC()
	ids, err := j.syncer.Due(ctx, now, j.batch)
	if err != nil {
		return nil, fmt.Errorf("list due discounts: %w", err)
	}

	var errs error
	result := Result{"discounts": int64(len(ids)), "opened": 0, "closed": 0, "failed": 0}
	for _, id := range ids {
		var synced discounts.SyncResult
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			res, err := j.syncer.SyncByID(ctx, tx, id, now)
			if err != nil {
				return err
			}
			synced = res
			return nil
		})
		if err != nil {
			result["failed"]++
			j.logg.Warn(j.logg.WithField(ctx, "discount_id", id.String()), "discount history sync failed")
			errs = multierr.Append(errs, fmt.Errorf("sync discount %s: %w", id, err))
			continue
		}
		result["opened"] += int64(synced.Opened)
		result["closed"] += int64(synced.Closed)
	}
	return result, errs
}

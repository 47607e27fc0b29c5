package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-backend/pkg/outbox/payloads"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SyncResult counts the history rows touched by one sync.
type SyncResult struct {
	Opened int
	Closed int
}

// HistorySync keeps product_discount_history aligned with the effective status
// of discounts. It is the only writer of history rows.
type HistorySync struct {
	repo   *Repository
	outbox outboxEmitter
}

// NewHistorySync builds the history writer.
func NewHistorySync(repo *Repository, emitter outboxEmitter) (*HistorySync, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &HistorySync{repo: repo, outbox: emitter}, nil
}

// SyncDiscount opens rows for every priced product a live discount affects
// and closes every open row of a discount that is not live. It must run
// inside tx.
func (h *HistorySync) SyncDiscount(ctx context.Context, tx *gorm.DB, discount *models.Discount, now time.Time) (SyncResult, error) {
	if tx == nil {
		return SyncResult{}, errors.New("transaction required")
	}
	repo := h.repo.WithTx(tx)
	open, err := repo.OpenHistoryProductIDs(ctx, discount.ID)
	if err != nil {
		return SyncResult{}, err
	}

	if !IsLive(EffectiveFromModel(discount), now) {
		return h.close(ctx, tx, repo, discount, open, now)
	}

	target, ok := TargetOf(discount)
	if !ok {
		return SyncResult{}, validationError(ReasonInvalidTarget, "discount target does not match target_type")
	}
	products, err := repo.ListPricedProductsForTarget(ctx, target)
	if err != nil {
		return SyncResult{}, err
	}

	rows := make([]models.ProductDiscountHistory, 0, len(products))
	for _, product := range products {
		if _, exists := open[product.ID]; exists || !product.Price.Valid {
			continue
		}
		rows = append(rows, models.ProductDiscountHistory{
			ID:           uuid.New(),
			ProductID:    product.ID,
			DiscountID:   discount.ID,
			AppliedAt:    now,
			AppliedPrice: ApplyDiscount(product.Price.Decimal, discount.DiscountType, discount.Value),
		})
	}
	if err := repo.CreateHistory(ctx, rows); err != nil {
		return SyncResult{}, err
	}
	for _, row := range rows {
		err := h.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountApplied,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   discount.ID,
			OccurredAt:    now,
			Data: payloads.DiscountAppliedEvent{
				DiscountID:   discount.ID,
				ProductID:    row.ProductID,
				AppliedPrice: row.AppliedPrice,
				AppliedAt:    row.AppliedAt,
			},
		})
		if err != nil {
			return SyncResult{}, err
		}
	}
	return SyncResult{Opened: len(rows)}, nil
}

func (h *HistorySync) close(ctx context.Context, tx *gorm.DB, repo *Repository, discount *models.Discount, open map[uuid.UUID]struct{}, now time.Time) (SyncResult, error) {
	if len(open) == 0 {
		return SyncResult{}, nil
	}
	if err := repo.CloseOpenHistory(ctx, discount.ID, now); err != nil {
		return SyncResult{}, err
	}
	for productID := range open {
		err := h.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountRemoved,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   discount.ID,
			OccurredAt:    now,
			Data: payloads.DiscountRemovedEvent{
				DiscountID: discount.ID,
				ProductID:  productID,
				RemovedAt:  now,
			},
		})
		if err != nil {
			return SyncResult{}, err
		}
	}
	return SyncResult{Closed: len(open)}, nil
}

// SyncByID locks the discount and syncs it inside tx.
func (h *HistorySync) SyncByID(ctx context.Context, tx *gorm.DB, discountID uuid.UUID, now time.Time) (SyncResult, error) {
	discount, err := h.repo.WithTx(tx).LockDiscount(ctx, discountID)
	if err != nil {
		return SyncResult{}, err
	}
	return h.SyncDiscount(ctx, tx, discount, now)
}

// Due lists the discounts whose history may be out of date at now: those with
// open rows that stopped being live, followed by every live one. Each kind is
// read in pages of at most limit rows.
func (h *HistorySync) Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("page size must be positive")
	}
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	add := func(rows []models.Discount) {
		for _, d := range rows {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			ids = append(ids, d.ID)
		}
	}

	afterID := uuid.Nil
	for {
		stale, err := h.repo.ListStaleOpen(ctx, now, afterID, limit)
		if err != nil {
			return nil, err
		}
		add(stale)
		if len(stale) < limit {
			break
		}
		afterID = stale[len(stale)-1].ID
	}

	var cursor *LiveCursor
	for {
		live, err := h.repo.ListLive(ctx, now, cursor, limit)
		if err != nil {
			return nil, err
		}
		add(live)
		if len(live) < limit {
			break
		}
		last := live[len(live)-1]
		cursor = &LiveCursor{StartsAt: last.StartsAt, ID: last.ID}
	}
	return ids, nil
}

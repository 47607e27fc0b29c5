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
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type moderationRecorder interface {
	ObserveDecision(entity, status string)
}

// Service exposes discount submission, moderation and pricing reads.
type Service interface {
	SubmitDiscount(ctx context.Context, principal Principal, input SubmitInput) (*DiscountDTO, error)
	TransitionDiscountStatus(ctx context.Context, principal Principal, discountID uuid.UUID, status enums.DiscountStatus) (*DiscountDTO, error)
	ListUserDiscounts(ctx context.Context, principal Principal, params pagination.Params) (*DiscountList, error)
	ListModerationQueue(ctx context.Context, principal Principal, status *enums.DiscountStatus, params pagination.Params) (*DiscountList, error)
	GetDiscount(ctx context.Context, principal Principal, discountID uuid.UUID) (*DiscountDTO, error)
	ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) (*HistoryPage, error)
	ProductPrice(ctx context.Context, productID uuid.UUID) (*PriceDTO, error)
}

type service struct {
	tx       txRunner
	repo     *Repository
	history  *HistorySync
	resolver *Resolver
	outbox   outboxEmitter
	metrics  moderationRecorder
	now      func() time.Time
}

// NewService wires the discount service. metrics may be nil.
func NewService(tx txRunner, repo *Repository, history *HistorySync, resolver *Resolver, emitter outboxEmitter, metrics moderationRecorder) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if history == nil {
		return nil, fmt.Errorf("history sync required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		history:  history,
		resolver: resolver,
		outbox:   emitter,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) ListUserDiscounts(ctx context.Context, principal Principal, params pagination.Params) (*DiscountList, error) {
	if principal.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID := principal.UserID
	return s.list(ctx, ListFilter{SubmittedBy: &userID}, params)
}

func (s *service) ListModerationQueue(ctx context.Context, principal Principal, status *enums.DiscountStatus, params pagination.Params) (*DiscountList, error) {
	if !principal.Role.CanModerate() {
		return nil, forbidden("moderator role required")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	return s.list(ctx, ListFilter{Status: status}, params)
}

func (s *service) list(ctx context.Context, filter ListFilter, params pagination.Params) (*DiscountList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor
	filter.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, dependency(err, "failed to list discounts")
	}
	rows, next := pagination.Page(rows, params.Limit, func(d models.Discount) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})

	now := s.now()
	items := make([]DiscountDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toDiscountDTO(&rows[i], now))
	}
	return &DiscountList{Items: items, NextCursor: next}, nil
}

func (s *service) GetDiscount(ctx context.Context, principal Principal, discountID uuid.UUID) (*DiscountDTO, error) {
	if !principal.Role.CanModerate() {
		return nil, forbidden("moderator role required")
	}
	discount, err := s.repo.FindDiscount(ctx, discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("discount not found")
		}
		return nil, dependency(err, "failed to load discount")
	}
	dto := toDiscountDTO(discount, s.now())
	return &dto, nil
}

func (s *service) ProductHistory(ctx context.Context, productID uuid.UUID, page, limit int) (*HistoryPage, error) {
	if _, err := s.repo.FindProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product not found")
		}
		return nil, dependency(err, "failed to load product")
	}
	if page < 1 {
		page = 1
	}
	limit = pagination.NormalizeLimit(limit)
	rows, total, err := s.repo.PageHistory(ctx, productID, pagination.Offset(page, limit), limit)
	if err != nil {
		return nil, dependency(err, "failed to load discount history")
	}
	now := s.now()
	items := make([]HistoryEntryDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toHistoryDTO(row, now))
	}
	return &HistoryPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *service) ProductPrice(ctx context.Context, productID uuid.UUID) (*PriceDTO, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product not found")
		}
		return nil, dependency(err, "failed to load product")
	}
	res, err := s.resolver.ResolveProduct(ctx, product, s.now())
	if err != nil {
		return nil, err
	}
	dto := priceDTO(product, res)
	return &dto, nil
}

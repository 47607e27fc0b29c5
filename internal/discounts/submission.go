package discounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-backend/pkg/outbox/payloads"
)

// SubmitInput is a user discount submission. Exactly one of ProductID,
// CategoryID or NewProduct selects the target.
type SubmitInput struct {
	Name         string
	Description  string
	DiscountType enums.DiscountType
	Value        decimal.Decimal
	StartsAt     time.Time // zero means now
	EndsAt       *time.Time
	ProductID    *uuid.UUID
	CategoryID   *uuid.UUID
	StoreID      *uuid.UUID
	NewProduct   *NewProductInput
}

// NewProductInput describes a product created together with its discount.
// Brand and category are looked up by name.
type NewProductInput struct {
	Name         string
	Description  string
	BrandName    string
	CategoryName string
	Price        *decimal.Decimal
	PriceUnit    enums.PriceUnit
	Weight       decimal.Decimal
	ExternalID   *string
}

func (in SubmitInput) targetCount() int {
	n := 0
	if in.ProductID != nil {
		n++
	}
	if in.CategoryID != nil {
		n++
	}
	if in.NewProduct != nil {
		n++
	}
	return n
}

func (s *service) SubmitDiscount(ctx context.Context, principal Principal, input SubmitInput) (*DiscountDTO, error) {
	if principal.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	if input.targetCount() != 1 {
		return nil, validationError(ReasonExactlyOneTargetRequired, "exactly one of product_id, category_id or new_product is required")
	}
	if (input.CategoryID != nil || input.NewProduct != nil) && input.StoreID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id is required").
			WithDetails(map[string]any{"field": "store_id"})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}

	now := s.now()
	if input.StartsAt.IsZero() {
		input.StartsAt = now
	}
	submitter := principal.UserID
	var created models.Discount
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		target, newProduct, err := s.resolveTarget(ctx, repo, input)
		if err != nil {
			return err
		}
		candidate := NewCandidate(input.DiscountType, input.Value, target, input.StartsAt.UTC(), utcPtr(input.EndsAt))
		if err := Validate(candidate); err != nil {
			return err
		}
		if newProduct != nil {
			if err := repo.CreateProduct(ctx, newProduct); err != nil {
				return dependency(err, "failed to create product")
			}
		}

		created = models.Discount{
			ID:           uuid.New(),
			Name:         name,
			Description:  strings.TrimSpace(input.Description),
			DiscountType: candidate.Type,
			Value:        candidate.Value,
			TargetType:   candidate.TargetType,
			StartsAt:     candidate.StartsAt,
			EndsAt:       candidate.EndsAt,
			Status:       enums.DiscountStatusInReview,
			SubmittedBy:  &submitter,
		}
		candidate.columns().apply(&created)
		if err := repo.CreateDiscount(ctx, &created); err != nil {
			return dependency(err, "failed to create discount")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountSubmitted,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: principal.UserID, Role: string(principal.Role)},
			OccurredAt:    now,
			Data: payloads.DiscountSubmittedEvent{
				DiscountID:   created.ID,
				Name:         created.Name,
				DiscountType: created.DiscountType,
				Value:        created.Value,
				TargetType:   created.TargetType,
				TargetID:     target.ID(),
				StartsAt:     created.StartsAt,
				EndsAt:       created.EndsAt,
				SubmittedBy:  created.SubmittedBy,
			},
		})
	})
	if err != nil {
		return nil, dependency(err, "failed to submit discount")
	}

	dto := toDiscountDTO(&created, now)
	return &dto, nil
}

// resolveTarget checks the referenced entities and, for the new product flow,
// returns the product to insert. The product id is assigned up front so the
// candidate can be validated before anything is written.
func (s *service) resolveTarget(ctx context.Context, repo *Repository, input SubmitInput) (Target, *models.Product, error) {
	var store *models.Store
	if input.StoreID != nil {
		found, err := repo.FindStore(ctx, *input.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Target{}, nil, notFound("store not found")
			}
			return Target{}, nil, dependency(err, "failed to load store")
		}
		store = found
	}

	switch {
	case input.ProductID != nil:
		if _, err := repo.FindProduct(ctx, *input.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Target{}, nil, notFound("product not found")
			}
			return Target{}, nil, dependency(err, "failed to load product")
		}
		return ProductTarget(*input.ProductID), nil, nil

	case input.CategoryID != nil:
		if _, err := repo.FindCategory(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Target{}, nil, notFound("category not found")
			}
			return Target{}, nil, dependency(err, "failed to load category")
		}
		return CategoryTarget(*input.CategoryID), nil, nil

	default:
		product, err := s.buildProduct(ctx, repo, store, *input.NewProduct)
		if err != nil {
			return Target{}, nil, err
		}
		return ProductTarget(product.ID), product, nil
	}
}

func (s *service) buildProduct(ctx context.Context, repo *Repository, store *models.Store, input NewProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new_product.name is required").
			WithDetails(map[string]any{"field": "new_product.name"})
	}
	brand, err := repo.FindBrandByName(ctx, strings.TrimSpace(input.BrandName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError(ReasonBrandNotFound, "brand not found")
		}
		return nil, dependency(err, "failed to load brand")
	}
	category, err := repo.FindCategoryByName(ctx, strings.TrimSpace(input.CategoryName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError(ReasonCategoryNotFound, "category not found")
		}
		return nil, dependency(err, "failed to load category")
	}
	if store.BrandID != brand.ID {
		return nil, validationError(ReasonBrandStoreMismatch, "brand does not match the store's brand")
	}
	unit := input.PriceUnit
	if unit == "" {
		unit = enums.PriceUnitPerPiece
	}
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price_unit")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     &store.ID,
		BrandID:     &brand.ID,
		CategoryID:  category.ID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		PriceUnit:   unit,
		Weight:      input.Weight,
		ExternalID:  input.ExternalID,
	}
	if input.Price != nil {
		product.Price = decimal.NewNullDecimal(input.Price.Round(2))
	}
	return product, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

const (
	productStoreNameConstraint  = "products_store_name_key"
	productBrandExternalIDConst = "products_brand_external_id_key"
)

// Service exposes product browsing and moderator product management.
type Service interface {
	CreateProduct(ctx context.Context, role enums.UserRole, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, role enums.UserRole, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, role enums.UserRole, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	StoreID     *uuid.UUID
	BrandID     *uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       *decimal.Decimal
	PriceUnit   enums.PriceUnit
	Weight      decimal.Decimal
	ExternalID  *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	StoreID     *uuid.UUID
	BrandID     *uuid.UUID
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ClearPrice  bool
	PriceUnit   *enums.PriceUnit
	Weight      *decimal.Decimal
	ExternalID  *string
}

type priceResolver interface {
	ResolveProduct(ctx context.Context, product *models.Product, now time.Time) (discounts.Resolution, error)
}

// service implements the product service.
type service struct {
	repo     *Repository
	dbClient *db.Client
	resolver priceResolver
	now      func() time.Time
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, resolver priceResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateProduct validates references and brand/store consistency, then inserts.
func (s *service) CreateProduct(ctx context.Context, role enums.UserRole, input CreateProductInput) (*ProductDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	unit := input.PriceUnit
	if unit == "" {
		unit = enums.PriceUnitPerPiece
	}
	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     input.StoreID,
		BrandID:     input.BrandID,
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		PriceUnit:   unit,
		Weight:      input.Weight,
		ExternalID:  trimmedPtr(input.ExternalID),
	}
	if input.Price != nil {
		product.Price = decimal.NewNullDecimal(input.Price.Round(2))
	}

	var created *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := s.validateProduct(ctx, txRepo, product); err != nil {
			return err
		}
		var err error
		created, err = txRepo.CreateProduct(ctx, product)
		if err != nil {
			return mapWriteError(err, "db: insert product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return s.toDTO(ctx, created)
}

// UpdateProduct applies the provided fields and re-checks consistency.
func (s *service) UpdateProduct(ctx context.Context, role enums.UserRole, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}

	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		applyUpdateToProduct(product, input)
		if err := s.validateProduct(ctx, txRepo, product); err != nil {
			return err
		}
		updated, err = txRepo.UpdateProduct(ctx, product)
		if err != nil {
			return mapWriteError(err, "db: update product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.toDTO(ctx, updated)
}

func (s *service) DeleteProduct(ctx context.Context, role enums.UserRole, productID uuid.UUID) error {
	if !role.CanModerate() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return s.toDTO(ctx, product)
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListProducts(ctx, input.Filters, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	rows, next := pagination.Page(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	now := s.now()
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		res, err := s.resolver.ResolveProduct(ctx, &rows[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, *NewProductDTO(&rows[i], res))
	}
	return &ProductListResult{Products: out, NextCursor: next}, nil
}

func (s *service) toDTO(ctx context.Context, product *models.Product) (*ProductDTO, error) {
	res, err := s.resolver.ResolveProduct(ctx, product, s.now())
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, res), nil
}

// validateProduct checks field values and references. A store without an
// explicit brand lends its brand to the product.
func (s *service) validateProduct(ctx context.Context, repo *Repository, product *models.Product) error {
	if product.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !product.PriceUnit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid price_unit")
	}
	if product.Price.Valid && product.Price.Decimal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if product.Weight.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "weight must not be negative")
	}

	exists, err := repo.Exists(ctx, &models.Category{}, product.CategoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	if product.BrandID != nil {
		exists, err := repo.Exists(ctx, &models.Brand{}, *product.BrandID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check brand")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
	}

	if product.StoreID == nil {
		return nil
	}
	store, err := repo.FindStore(ctx, *product.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if product.BrandID == nil {
		brandID := store.BrandID
		product.BrandID = &brandID
		return nil
	}
	if *product.BrandID != store.BrandID {
		return pkgerrors.New(pkgerrors.CodeValidation, "brand does not match the store's brand").
			WithReason(string(discounts.ReasonBrandStoreMismatch)).
			WithDetails(map[string]any{"reason": string(discounts.ReasonBrandStoreMismatch)})
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.StoreID != nil {
		product.StoreID = input.StoreID
	}
	if input.BrandID != nil {
		product.BrandID = input.BrandID
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	switch {
	case input.ClearPrice:
		product.Price = decimal.NullDecimal{}
	case input.Price != nil:
		product.Price = decimal.NewNullDecimal(input.Price.Round(2))
	}
	if input.PriceUnit != nil {
		product.PriceUnit = *input.PriceUnit
	}
	if input.Weight != nil {
		product.Weight = *input.Weight
	}
	if input.ExternalID != nil {
		product.ExternalID = trimmedPtr(input.ExternalID)
	}
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapWriteError(err error, message string) error {
	switch {
	case db.IsUniqueViolation(err, productStoreNameConstraint), db.IsUniqueViolation(err, "products.store_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "store already lists a product with this name")
	case db.IsUniqueViolation(err, productBrandExternalIDConst), db.IsUniqueViolation(err, "products.brand_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "brand already has a product with this external id")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

const storeAddressConstraint = "stores_brand_address_key"

type storeRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	BrandExists(ctx context.Context, brandID uuid.UUID) (bool, error)
	Update(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, brandID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Store, error)
}

// Service exposes store operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context, brandID *uuid.UUID, params pagination.Params) (*StoreList, error)
	Create(ctx context.Context, role enums.UserRole, input CreateStoreDTO) (*StoreDTO, error)
	Update(ctx context.Context, role enums.UserRole, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, role enums.UserRole, storeID uuid.UUID) error
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context, brandID *uuid.UUID, params pagination.Params) (*StoreList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, brandID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	rows, next := pagination.Page(rows, params.Limit, func(st models.Store) pagination.Cursor {
		return pagination.Cursor{CreatedAt: st.CreatedAt, ID: st.ID}
	})
	items := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &StoreList{Items: items, NextCursor: next}, nil
}

func (s *service) Create(ctx context.Context, role enums.UserRole, input CreateStoreDTO) (*StoreDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	model := input.ToModel()
	if model.AddressLine1 == "" || model.City == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address_line1 and city are required")
	}
	exists, err := s.repo.BrandExists(ctx, input.BrandID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check brand")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	store, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, role enums.UserRole, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	if !role.CanModerate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	applyUpdate(store, input)
	if store.AddressLine1 == "" || store.City == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address_line1 and city must not be empty")
	}
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, mapWriteError(err)
	}
	return FromModel(store), nil
}

func (s *service) Delete(ctx context.Context, role enums.UserRole, storeID uuid.UUID) error {
	if !role.CanModerate() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	if err := s.repo.Delete(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func mapWriteError(err error) error {
	if pkgdb.IsUniqueViolation(err, storeAddressConstraint) || pkgdb.IsUniqueViolation(err, "stores.brand_id") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "brand already has a store at this address")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save store")
}

package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// Repository handles store persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.DB(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// BrandExists reports whether the brand row is present.
func (r *Repository) BrandExists(ctx context.Context, brandID uuid.UUID) (bool, error) {
	var n int64
	if err := r.DB(ctx).Model(&models.Brand{}).Where("id = ?", brandID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.DB(ctx).Omit("Brand").Save(store).Error
}

// Delete removes the store; its products cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteByID(ctx, &models.Store{}, id)
}

// List returns stores newest first, optionally for a single brand.
func (r *Repository) List(ctx context.Context, brandID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Store, error) {
	query := r.DB(ctx).Model(&models.Store{})
	if brandID != nil {
		query = query.Where("brand_id = ?", *brandID)
	}
	var stores []models.Store
	err := repo.NewestFirst(query, cursor, limit).Find(&stores).Error
	return stores, err
}

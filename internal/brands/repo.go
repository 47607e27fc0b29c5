package brands

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// Repository persists brands.
type Repository struct {
	repo.Base
}

// NewRepository builds a brand repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	return r.DB(ctx).Create(brand).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.DB(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// Save writes every column of the brand.
func (r *Repository) Save(ctx context.Context, brand *models.Brand) error {
	return r.DB(ctx).Save(brand).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteByID(ctx, &models.Brand{}, id)
}

// List returns brands newest first after cursor.
func (r *Repository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Brand, error) {
	var rows []models.Brand
	err := repo.NewestFirst(r.DB(ctx).Model(&models.Brand{}), cursor, limit).Find(&rows).Error
	return rows, err
}

package brands

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// BrandDTO is the API view of a brand.
type BrandDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BrandList is one cursor page of brands.
type BrandList struct {
	Items      []BrandDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateInput creates a brand.
type CreateInput struct {
	Name        string
	Description string
}

// UpdateInput changes the provided fields only.
type UpdateInput struct {
	Name        *string
	Description *string
}

// FromModel maps a brand row.
func FromModel(b *models.Brand) BrandDTO {
	return BrandDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

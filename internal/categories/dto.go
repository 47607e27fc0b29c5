package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// CategoryDTO is the API view of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryList is one cursor page of categories.
type CategoryList struct {
	Items      []CategoryDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateInput creates a category.
type CreateInput struct {
	Name        string
	Description string
}

type UpdateInput struct {
	Name        *string
	Description *string
}

func FromModel(b *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

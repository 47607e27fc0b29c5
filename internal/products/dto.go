package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// ProductDTO represents the product payload returned to clients. Money fields
// are decimal strings with two places.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	StoreID       *uuid.UUID      `json:"store_id,omitempty"`
	BrandID       *uuid.UUID      `json:"brand_id,omitempty"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         *string         `json:"price"`
	ResolvedPrice *string         `json:"resolved_price"`
	PriceSource   string          `json:"price_source"`
	PriceUnit     enums.PriceUnit `json:"price_unit"`
	Weight        string          `json:"weight"`
	ExternalID    *string         `json:"external_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResult is one cursor page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO maps a product row plus its resolved price.
func NewProductDTO(p *models.Product, res discounts.Resolution) *ProductDTO {
	dto := &ProductDTO{
		ID:            p.ID,
		StoreID:       p.StoreID,
		BrandID:       p.BrandID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Description:   p.Description,
		ResolvedPrice: discounts.FormatMoneyPtr(res.Price),
		PriceSource:   res.Source,
		PriceUnit:     p.PriceUnit,
		Weight:        p.Weight.StringFixed(3),
		ExternalID:    p.ExternalID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Price.Valid {
		dto.Price = discounts.FormatMoneyPtr(&p.Price.Decimal)
	}
	return dto
}

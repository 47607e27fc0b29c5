package product

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	StoreID    *uuid.UUID `json:"store_id,omitempty"`
	BrandID    *uuid.UUID `json:"brand_id,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Query      string     `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter products.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}

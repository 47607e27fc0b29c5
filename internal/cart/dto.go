package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// CartDTO is the priced view of a cart. Money fields are decimal strings.
type CartDTO struct {
	ID       *uuid.UUID       `json:"id,omitempty"`
	Status   enums.CartStatus `json:"status"`
	Items    []CartItemDTO    `json:"items"`
	Total    string           `json:"total"`
	ClosedAt *time.Time       `json:"closed_at,omitempty"`
}

// CartItemDTO is one priced cart line. UnitPrice is the resolved price when a
// discount applies, otherwise the base price. LineTotal is nil for products
// without a price.
type CartItemDTO struct {
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	BasePrice   *string   `json:"base_price"`
	UnitPrice   *string   `json:"unit_price"`
	LineTotal   *string   `json:"line_total"`
	PriceSource string    `json:"price_source"`
}

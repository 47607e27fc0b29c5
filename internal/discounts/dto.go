package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// DiscountDTO is the API view of a discount. EffectiveStatus is computed at
// read time.
type DiscountDTO struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	DiscountType    enums.DiscountType       `json:"discount_type"`
	Value           string                   `json:"value"`
	TargetType      enums.DiscountTargetType `json:"target_type"`
	TargetID        *uuid.UUID               `json:"target_id,omitempty"`
	ProductID       *uuid.UUID               `json:"product_id,omitempty"`
	CategoryID      *uuid.UUID               `json:"category_id,omitempty"`
	BrandID         *uuid.UUID               `json:"brand_id,omitempty"`
	StoreID         *uuid.UUID               `json:"store_id,omitempty"`
	StartsAt        time.Time                `json:"starts_at"`
	EndsAt          *time.Time               `json:"ends_at,omitempty"`
	Status          enums.DiscountStatus     `json:"status"`
	EffectiveStatus enums.EffectiveStatus    `json:"effective_status"`
	SubmittedBy     *uuid.UUID               `json:"submitted_by,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// DiscountList is one cursor page of discounts.
type DiscountList struct {
	Items      []DiscountDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// HistoryEntryDTO is one product_discount_history row with its discount.
type HistoryEntryDTO struct {
	ID           uuid.UUID          `json:"id"`
	ProductID    uuid.UUID          `json:"product_id"`
	DiscountID   uuid.UUID          `json:"discount_id"`
	DiscountName string             `json:"discount_name"`
	DiscountType enums.DiscountType `json:"discount_type"`
	Value        string             `json:"value"`
	AppliedPrice string             `json:"applied_price"`
	AppliedAt    time.Time          `json:"applied_at"`
	RemovedAt    *time.Time         `json:"removed_at,omitempty"`
	Active       bool               `json:"active"`
}

// HistoryPage is one offset page of a product's history.
type HistoryPage struct {
	Items []HistoryEntryDTO `json:"items"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

// PriceDTO explains the current price of a product.
type PriceDTO struct {
	ProductID     uuid.UUID  `json:"product_id"`
	BasePrice     *string    `json:"base_price"`
	ResolvedPrice *string    `json:"resolved_price"`
	Source        string     `json:"source"`
	DiscountID    *uuid.UUID `json:"discount_id,omitempty"`
}

// FormatMoney renders an amount with two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatMoneyPtr is FormatMoney for optional amounts.
func FormatMoneyPtr(amount *decimal.Decimal) *string {
	if amount == nil {
		return nil
	}
	formatted := FormatMoney(*amount)
	return &formatted
}

func toDiscountDTO(d *models.Discount, now time.Time) DiscountDTO {
	dto := DiscountDTO{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		DiscountType:    d.DiscountType,
		Value:           FormatMoney(d.Value),
		TargetType:      d.TargetType,
		ProductID:       d.ProductID,
		CategoryID:      d.CategoryID,
		BrandID:         d.BrandID,
		StoreID:         d.StoreID,
		StartsAt:        d.StartsAt,
		EndsAt:          d.EndsAt,
		Status:          d.Status,
		EffectiveStatus: EffectiveStatus(EffectiveFromModel(d), now),
		SubmittedBy:     d.SubmittedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if target, ok := TargetOf(d); ok {
		id := target.ID()
		dto.TargetID = &id
	}
	return dto
}

func toHistoryDTO(row historyWithDiscount, now time.Time) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:           row.History.ID,
		ProductID:    row.History.ProductID,
		DiscountID:   row.History.DiscountID,
		DiscountName: row.Discount.Name,
		DiscountType: row.Discount.DiscountType,
		Value:        FormatMoney(row.Discount.Value),
		AppliedPrice: FormatMoney(row.History.AppliedPrice),
		AppliedAt:    row.History.AppliedAt,
		RemovedAt:    row.History.RemovedAt,
		Active:       row.History.RemovedAt == nil || row.History.RemovedAt.After(now),
	}
}

func priceDTO(product *models.Product, res Resolution) PriceDTO {
	dto := PriceDTO{
		ProductID:     product.ID,
		ResolvedPrice: FormatMoneyPtr(res.Price),
		Source:        res.Source,
		DiscountID:    res.DiscountID,
	}
	if product.Price.Valid {
		dto.BasePrice = FormatMoneyPtr(&product.Price.Decimal)
	}
	return dto
}

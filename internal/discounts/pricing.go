package discounts

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
)

// Resolution sources, shared with the pricing metrics labels.
const (
	SourceDirect  = metrics.PriceSourceDirect
	SourceHistory = metrics.PriceSourceHistory
	SourceNone    = metrics.PriceSourceNone
	SourceNoPrice = metrics.PriceSourceNoPrice
)

// PricedProduct is what the resolver needs to know about a product.
type PricedProduct struct {
	ID         uuid.UUID
	Price      *decimal.Decimal
	CategoryID uuid.UUID
	BrandID    *uuid.UUID
	StoreID    *uuid.UUID
}

// PricedProductFromModel maps a stored product.
func PricedProductFromModel(p *models.Product) PricedProduct {
	out := PricedProduct{ID: p.ID, CategoryID: p.CategoryID, BrandID: p.BrandID, StoreID: p.StoreID}
	if p.Price.Valid {
		price := p.Price.Decimal
		out.Price = &price
	}
	return out
}

// Rule is a discount as seen by the resolver.
type Rule struct {
	DiscountID uuid.UUID
	Type       enums.DiscountType
	Value      decimal.Decimal
	Target     Target
	Status     enums.DiscountStatus
	StartsAt   time.Time
	EndsAt     *time.Time
}

// RuleFromModel maps a stored discount. ok is false for rows with a broken
// target, which never apply.
func RuleFromModel(d *models.Discount) (Rule, bool) {
	target, ok := TargetOf(d)
	if !ok {
		return Rule{}, false
	}
	return Rule{
		DiscountID: d.ID,
		Type:       d.DiscountType,
		Value:      d.Value,
		Target:     target,
		Status:     d.Status,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
	}, true
}

func (r Rule) live(now time.Time) bool {
	return IsLive(EffectiveInput{Status: r.Status, StartsAt: r.StartsAt, EndsAt: r.EndsAt}, now)
}

// appliesTo reports whether the rule's target resolves to p.
func (r Rule) appliesTo(p PricedProduct) bool {
	id := r.Target.ID()
	switch r.Target.Type() {
	case enums.DiscountTargetProduct:
		return id == p.ID
	case enums.DiscountTargetCategory:
		return id == p.CategoryID
	case enums.DiscountTargetBrand:
		return p.BrandID != nil && id == *p.BrandID
	case enums.DiscountTargetStore:
		return p.StoreID != nil && id == *p.StoreID
	}
	return false
}

// HistoryEntry is a product_discount_history row joined with its discount.
type HistoryEntry struct {
	AppliedAt time.Time
	RemovedAt *time.Time
	Rule      Rule
}

func (h HistoryEntry) open(now time.Time) bool {
	return h.RemovedAt == nil || h.RemovedAt.After(now)
}

// Candidates groups everything that may price a product.
type Candidates struct {
	Direct  []Rule
	History []HistoryEntry
}

// Resolution explains a resolved price. Price is nil when nothing applies.
type Resolution struct {
	Price      *decimal.Decimal
	Source     string
	DiscountID *uuid.UUID
}

// ApplyDiscount computes the discounted price, clamped at zero and rounded
// half-up to cents.
func ApplyDiscount(price decimal.Decimal, discountType enums.DiscountType, value decimal.Decimal) decimal.Decimal {
	var discounted decimal.Decimal
	switch discountType {
	case enums.DiscountTypePercentage:
		discounted = price.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case enums.DiscountTypeFixed:
		discounted = price.Sub(value)
	default:
		discounted = price
	}
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	return discounted.Round(2)
}

// ResolvePrice returns the best discounted price for p at now, or nil when the
// product has no price or no discount applies.
func ResolvePrice(p PricedProduct, c Candidates, now time.Time) *decimal.Decimal {
	return Resolve(p, c, now).Price
}

// Resolve is ResolvePrice with the winning source attached. Active direct
// rules win over history; among direct rules the lowest price wins. History
// falls back to the newest open row whose discount is still live.
func Resolve(p PricedProduct, c Candidates, now time.Time) Resolution {
	if p.Price == nil {
		return Resolution{Source: SourceNoPrice}
	}
	base := *p.Price

	var best *decimal.Decimal
	var bestID uuid.UUID
	for _, rule := range c.Direct {
		if !rule.live(now) || !rule.appliesTo(p) {
			continue
		}
		price := ApplyDiscount(base, rule.Type, rule.Value)
		if best == nil || price.LessThan(*best) {
			best = &price
			bestID = rule.DiscountID
		}
	}
	if best != nil {
		return Resolution{Price: best, Source: SourceDirect, DiscountID: &bestID}
	}

	history := make([]HistoryEntry, len(c.History))
	copy(history, c.History)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].AppliedAt.After(history[j].AppliedAt)
	})
	for _, entry := range history {
		if !entry.open(now) || !entry.Rule.live(now) {
			continue
		}
		price := ApplyDiscount(base, entry.Rule.Type, entry.Rule.Value)
		id := entry.Rule.DiscountID
		return Resolution{Price: &price, Source: SourceHistory, DiscountID: &id}
	}

	return Resolution{Source: SourceNone}
}

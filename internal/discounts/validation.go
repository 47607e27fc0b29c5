package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Candidate is a discount about to be written. TargetType and the four FK
// fields mirror the storage columns; NewCandidate fills them from a Target.
type Candidate struct {
	Type       enums.DiscountType
	Value      decimal.Decimal
	TargetType enums.DiscountTargetType
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	StoreID    *uuid.UUID
	StartsAt   time.Time
	EndsAt     *time.Time
}

// NewCandidate builds a candidate whose FK columns come from target.
func NewCandidate(discountType enums.DiscountType, value decimal.Decimal, target Target, startsAt time.Time, endsAt *time.Time) Candidate {
	cols := columnsFor(target)
	return Candidate{
		Type:       discountType,
		Value:      value,
		TargetType: target.Type(),
		ProductID:  cols.ProductID,
		CategoryID: cols.CategoryID,
		BrandID:    cols.BrandID,
		StoreID:    cols.StoreID,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}
}

// CandidateFromModel maps a stored discount back into a candidate.
func CandidateFromModel(d *models.Discount) Candidate {
	return Candidate{
		Type:       d.DiscountType,
		Value:      d.Value,
		TargetType: d.TargetType,
		ProductID:  d.ProductID,
		CategoryID: d.CategoryID,
		BrandID:    d.BrandID,
		StoreID:    d.StoreID,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
	}
}

func (c Candidate) columns() targetColumns {
	return targetColumns{ProductID: c.ProductID, CategoryID: c.CategoryID, BrandID: c.BrandID, StoreID: c.StoreID}
}

// Validate checks target consistency, the value range for the discount type
// and the date window. It has no side effects.
func Validate(c Candidate) error {
	cols := c.columns()
	if !c.TargetType.IsValid() || cols.populated(c.TargetType) == nil || cols.count() != 1 {
		return validationError(ReasonInvalidTarget, "discount target does not match target_type")
	}

	switch c.Type {
	case enums.DiscountTypePercentage:
		if !c.Value.IsPositive() || c.Value.GreaterThan(hundred) {
			return validationError(ReasonInvalidPercentage, "percentage discounts must be greater than 0 and at most 100")
		}
	case enums.DiscountTypeFixed:
		if !c.Value.IsPositive() {
			return validationError(ReasonInvalidFixedValue, "fixed discounts must be greater than 0")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount_type")
	}

	if c.EndsAt != nil && !c.StartsAt.IsZero() && !c.EndsAt.After(c.StartsAt) {
		return validationError(ReasonInvalidDateRange, "ends_at must be after starts_at")
	}
	return nil
}

package discounts

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Target is the single catalog entity a discount applies to. Build one with
// ProductTarget, CategoryTarget, BrandTarget or StoreTarget.
type Target struct {
	kind enums.DiscountTargetType
	id   uuid.UUID
}

func ProductTarget(id uuid.UUID) Target {
	return Target{kind: enums.DiscountTargetProduct, id: id}
}

func CategoryTarget(id uuid.UUID) Target {
	return Target{kind: enums.DiscountTargetCategory, id: id}
}

func BrandTarget(id uuid.UUID) Target {
	return Target{kind: enums.DiscountTargetBrand, id: id}
}

func StoreTarget(id uuid.UUID) Target {
	return Target{kind: enums.DiscountTargetStore, id: id}
}

// Type returns the target kind.
func (t Target) Type() enums.DiscountTargetType { return t.kind }

// ID returns the referenced entity id.
func (t Target) ID() uuid.UUID { return t.id }

// IsZero reports whether the target was never set.
func (t Target) IsZero() bool { return t.kind == "" }

// targetColumns maps a target onto the four nullable FK columns.
type targetColumns struct {
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	StoreID    *uuid.UUID
}

func columnsFor(t Target) targetColumns {
	id := t.id
	var cols targetColumns
	switch t.kind {
	case enums.DiscountTargetProduct:
		cols.ProductID = &id
	case enums.DiscountTargetCategory:
		cols.CategoryID = &id
	case enums.DiscountTargetBrand:
		cols.BrandID = &id
	case enums.DiscountTargetStore:
		cols.StoreID = &id
	}
	return cols
}

func (c targetColumns) apply(d *models.Discount) {
	d.ProductID = c.ProductID
	d.CategoryID = c.CategoryID
	d.BrandID = c.BrandID
	d.StoreID = c.StoreID
}

// populated returns the column matching kind, or nil.
func (c targetColumns) populated(kind enums.DiscountTargetType) *uuid.UUID {
	switch kind {
	case enums.DiscountTargetProduct:
		return c.ProductID
	case enums.DiscountTargetCategory:
		return c.CategoryID
	case enums.DiscountTargetBrand:
		return c.BrandID
	case enums.DiscountTargetStore:
		return c.StoreID
	}
	return nil
}

func (c targetColumns) count() int {
	n := 0
	for _, id := range []*uuid.UUID{c.ProductID, c.CategoryID, c.BrandID, c.StoreID} {
		if id != nil {
			n++
		}
	}
	return n
}

// TargetOf rebuilds the tagged target of a stored discount. ok is false when
// the row does not hold exactly one FK matching its target_type.
func TargetOf(d *models.Discount) (Target, bool) {
	cols := targetColumns{ProductID: d.ProductID, CategoryID: d.CategoryID, BrandID: d.BrandID, StoreID: d.StoreID}
	id := cols.populated(d.TargetType)
	if id == nil || cols.count() != 1 {
		return Target{}, false
	}
	return Target{kind: d.TargetType, id: *id}, true
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Discount is a user-submitted price rule for exactly one catalog target.
// Exactly one of ProductID, CategoryID, BrandID or StoreID is set and it
// matches TargetType.
type Discount struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                   `gorm:"column:name;not null"`
	Description  string                   `gorm:"column:description;not null;default:''"`
	DiscountType enums.DiscountType       `gorm:"column:discount_type;type:text;not null"`
	Value        decimal.Decimal          `gorm:"column:value;type:numeric(10,2);not null"`
	TargetType   enums.DiscountTargetType `gorm:"column:target_type;type:text;not null"`
	ProductID    *uuid.UUID               `gorm:"column:product_id;type:uuid;index"`
	CategoryID   *uuid.UUID               `gorm:"column:category_id;type:uuid;index"`
	BrandID      *uuid.UUID               `gorm:"column:brand_id;type:uuid;index"`
	StoreID      *uuid.UUID               `gorm:"column:store_id;type:uuid;index"`
	StartsAt     time.Time                `gorm:"column:starts_at;not null"`
	EndsAt       *time.Time               `gorm:"column:ends_at"`
	Status       enums.DiscountStatus     `gorm:"column:status;type:text;not null;default:in_review"`
	SubmittedBy  *uuid.UUID               `gorm:"column:submitted_by;type:uuid;index"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductDiscountHistory records a discount applied to a product at a
// snapshotted price. AppliedAt never changes after insert; a row stays active
// until RemovedAt passes.
type ProductDiscountHistory struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	DiscountID   uuid.UUID       `gorm:"column:discount_id;type:uuid;not null;index"`
	AppliedAt    time.Time       `gorm:"column:applied_at;not null;autoCreateTime;<-:create"`
	RemovedAt    *time.Time      `gorm:"column:removed_at"`
	AppliedPrice decimal.Decimal `gorm:"column:applied_price;type:numeric(10,2);not null"`
}

// TableName pins the history table name.
func (ProductDiscountHistory) TableName() string {
	return "product_discount_history"
}

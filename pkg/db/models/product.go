package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Product is a catalog item. Store and brand are optional so imported items can
// exist before assignment; when both are set the brand must match the store's.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     *uuid.UUID          `gorm:"column:store_id;type:uuid;uniqueIndex:products_store_name_key,priority:1"`
	BrandID     *uuid.UUID          `gorm:"column:brand_id;type:uuid;uniqueIndex:products_brand_external_id_key,priority:1"`
	CategoryID  uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Name        string              `gorm:"column:name;not null;uniqueIndex:products_store_name_key,priority:2"`
	Description string              `gorm:"column:description;not null;default:''"`
	Price       decimal.NullDecimal `gorm:"column:price;type:numeric(10,2)"`
	PriceUnit   enums.PriceUnit     `gorm:"column:price_unit;type:text;not null;default:per_piece"`
	Weight      decimal.Decimal     `gorm:"column:weight;type:numeric(8,3);not null;default:0"`
	ExternalID  *string             `gorm:"column:external_id;uniqueIndex:products_brand_external_id_key,priority:2"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
